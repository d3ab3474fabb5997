package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"citymove/internal/api"
	"citymove/internal/api/handlers"
	"citymove/internal/api/middleware"
	"citymove/internal/config"
	"citymove/internal/domain/entities"
	"citymove/internal/logging"
	"citymove/internal/metrics"
	"citymove/internal/publisher"
	"citymove/internal/repository"
	"citymove/internal/repository/memory"
	"citymove/internal/repository/postgres"
	"citymove/internal/repository/redis"
	"citymove/internal/services"
	"citymove/internal/tracing"
)

type stores struct {
	vehicles repository.VehicleRepository
	users    repository.UserRepository
	prefs    repository.PreferenceRepository
	sessions repository.SessionStore
}

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	slog.SetDefault(logger)

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		log.Fatalf("tracing setup: %v", err)
	}
	defer shutdownTracing(context.Background())

	var mcol *metrics.Collector
	if cfg.Metrics.Enabled {
		mcol = metrics.NewCollector()
	}

	// Initialize repositories
	st, db := openStores(ctx, cfg, logger)
	if db != nil {
		defer db.Close()
	}

	// Live feed: the same component usually both publishes and consumes.
	var (
		feed       services.Feed
		vehiclePub services.VehiclePublisher
	)
	switch cfg.Feed.Driver {
	case config.FeedNATS:
		nc, err := publisher.NewNATSClient(cfg.Feed.NATSURL, cfg.Feed.SubjectPrefix, cfg.Feed.GeohashPrecision, logger)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer nc.Close()
		feed, vehiclePub = nc, nc
	case config.FeedPostgres:
		// The vehicles trigger emits changes, so updates need no explicit publish.
		feed = postgres.NewChangeFeed(cfg.Store.DatabaseURL, logger)
	default:
		local := publisher.NewLocalFeed(256)
		feed, vehiclePub = local, local
	}

	// Initialize services
	vehicleHub := publisher.NewHub[entities.Vehicle](64)
	defer vehicleHub.Close()
	authHub := publisher.NewHub[entities.AuthEvent](64)
	defer authHub.Close()

	notificationService := services.NewNotificationService(logger, mcol)
	profileService := services.NewProfileService(st.users, st.prefs)
	vehicleService := services.NewVehicleService(st.vehicles, memory.FixtureVehicles(), vehiclePub, cfg.Search, mcol, logger)
	trackingService := services.NewTrackingService(feed, vehicleHub, profileService, notificationService, mcol, logger)
	authService := services.NewAuthService(st.users, st.prefs, st.sessions, authHub, notificationService, cfg.Session, mcol, logger)

	if initial, err := vehicleService.List(ctx); err == nil {
		trackingService.Prime(initial)
	}
	go func() {
		if err := trackingService.Run(ctx); err != nil {
			logging.LogError(logger, "tracking stopped", err)
		}
	}()
	go logAuthEvents(ctx, authService, logger)

	// Initialize handlers
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, trackingService, mcol, cfg.Feed.GeohashPrecision)
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Setup router
	router := api.NewRouter(vehicleHandler, authHandler, profileHandler, authService, cfg.Server.OperatorKeys, mcol)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Observe(logger, mcol))
	router.Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      otelhttp.NewHandler(engine, "citymove"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "store", cfg.Store.Driver,
			"sessions", cfg.Session.Driver, "feed", feed.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logging.LogError(logger, "server failed", err)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "server shutdown", err)
	}
	logger.Info("server stopped")
}

// openStores builds the repositories and session store selected by cfg. The
// returned *sql.DB is nil for the memory driver.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, *sql.DB) {
	var st stores
	var db *sql.DB

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		var err error
		db, err = postgres.Open(cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		if err := postgres.Ping(ctx, db); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		vehicles := postgres.NewVehicleRepository(db)
		if cfg.Store.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.Fatalf("db migrate error: %v", err)
			}
			if err := seedVehicles(ctx, vehicles); err != nil {
				log.Fatalf("db seed error: %v", err)
			}
		}
		st.vehicles = vehicles
		st.users = postgres.NewUserRepository(db)
		st.prefs = postgres.NewPreferenceRepository(db)
	default:
		st.vehicles = memory.NewSeededVehicleRepository()
		st.users = memory.NewUserRepository()
		st.prefs = memory.NewPreferenceRepository()
	}

	switch cfg.Session.Driver {
	case config.DriverRedis:
		rs := redis.NewSessionStore(redis.NewPool(cfg.Session.RedisAddr))
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("redis: %v", err)
		}
		st.sessions = rs
	default:
		st.sessions = memory.NewSessionStore(cfg.Session.SweepInterval)
	}

	logger.Debug("stores ready", "store", cfg.Store.Driver, "sessions", cfg.Session.Driver)
	return st, db
}

// seedVehicles loads the sample set into an empty vehicles table.
func seedVehicles(ctx context.Context, repo repository.VehicleRepository) error {
	existing, err := repo.List(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, v := range memory.FixtureVehicles() {
		v := v
		if err := repo.Upsert(ctx, &v); err != nil {
			return err
		}
	}
	return nil
}

func logAuthEvents(ctx context.Context, auth *services.AuthService, logger *slog.Logger) {
	events, cancel := auth.Events(ctx)
	defer cancel()
	for ev := range events {
		logger.Info("auth event", "event", ev.Type, "user_id", ev.UserID)
	}
}
