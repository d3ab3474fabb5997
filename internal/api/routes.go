package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"citymove/internal/api/handlers"
	"citymove/internal/api/middleware"
	"citymove/internal/metrics"
)

type Router struct {
	vehicleHandler *handlers.VehicleHandler
	authHandler    *handlers.AuthHandler
	profileHandler *handlers.ProfileHandler
	sessions       middleware.SessionResolver
	operatorKeys   []string
	metrics        *metrics.Collector
}

func NewRouter(
	vehicleHandler *handlers.VehicleHandler,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	sessions middleware.SessionResolver,
	operatorKeys []string,
	m *metrics.Collector,
) *Router {
	return &Router{
		vehicleHandler: vehicleHandler,
		authHandler:    authHandler,
		profileHandler: profileHandler,
		sessions:       sessions,
		operatorKeys:   operatorKeys,
		metrics:        m,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if r.metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	// Public catalogue
	vehicles := engine.Group("/vehicles")
	{
		vehicles.GET("", r.vehicleHandler.List)
		vehicles.GET("/search", r.vehicleHandler.Search)
		vehicles.GET("/nearby", r.vehicleHandler.Nearby)
		vehicles.GET("/filter", r.vehicleHandler.Filter)
		vehicles.GET("/stream", r.vehicleHandler.Stream)
		vehicles.GET("/:id", r.vehicleHandler.Get)

		// Operator feed
		vehicles.PATCH("/:id/location", middleware.RequireOperator(r.operatorKeys), r.vehicleHandler.UpdateLocation)
	}

	auth := engine.Group("/auth")
	{
		auth.POST("/signup", r.authHandler.SignUp)
		auth.POST("/signin", r.authHandler.SignIn)
		auth.POST("/reset", r.authHandler.RequestReset)
		auth.POST("/reset/confirm", r.authHandler.ConfirmReset)

		authed := auth.Group("")
		authed.Use(middleware.RequireSession(r.sessions))
		{
			authed.POST("/signout", r.authHandler.SignOut)
			authed.GET("/session", r.authHandler.Session)
		}
	}

	// Protected routes
	profile := engine.Group("/profile")
	profile.Use(middleware.RequireSession(r.sessions))
	{
		profile.GET("", r.profileHandler.Profile)
		profile.GET("/preferences", r.profileHandler.Preferences)
		profile.PATCH("/preferences", r.profileHandler.UpdatePreferences)
	}
}
