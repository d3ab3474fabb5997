package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"citymove/internal/api/middleware"
	"citymove/internal/domain/entities"
	"citymove/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Profile handles GET /profile
func (h *ProfileHandler) Profile(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	profile, err := h.profiles.Profile(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Preferences handles GET /profile/preferences
func (h *ProfileHandler) Preferences(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	prefs, err := h.profiles.Get(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PATCH /profile/preferences. Fields left out of
// the body keep their current value.
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	var patch entities.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, _ := middleware.GetSession(c)

	prefs, err := h.profiles.Update(c.Request.Context(), session.UserID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
