package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"citymove/internal/config"
	"citymove/internal/domain/entities"
	"citymove/internal/metrics"
	"citymove/internal/publisher"
	"citymove/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ids(vs []entities.Vehicle) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []entities.Vehicle
	err       error
}

func (p *recordingPublisher) PublishVehicle(ctx context.Context, v entities.Vehicle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, v)
	return p.err
}

// failingVehicleRepo simulates the store being down.
type failingVehicleRepo struct {
	*memory.VehicleRepository
}

func (failingVehicleRepo) List(ctx context.Context) ([]entities.Vehicle, error) {
	return nil, errors.New("connection refused")
}

type testEnv struct {
	vehicles  *VehicleService
	auth      *AuthService
	profiles  *ProfileService
	tracking  *TrackingService
	publisher *recordingPublisher
	metrics   *metrics.Collector
	feed      *publisher.LocalFeed
}

func setupServices() *testEnv {
	cfg := config.NewDefaultConfig()
	logger := testLogger()
	m := metrics.NewCollector()

	users := memory.NewUserRepository()
	prefs := memory.NewPreferenceRepository()
	sessions := memory.NewSessionStore(cfg.Session.SweepInterval)

	pub := &recordingPublisher{}
	notifier := NewNotificationService(logger, m)
	profiles := NewProfileService(users, prefs)
	feed := publisher.NewLocalFeed(8)

	auth := NewAuthService(users, prefs, sessions, publisher.NewHub[entities.AuthEvent](8), notifier, cfg.Session, m, logger)
	auth.SetHashCost(4)

	return &testEnv{
		vehicles:  NewVehicleService(memory.NewSeededVehicleRepository(), memory.FixtureVehicles(), pub, cfg.Search, m, logger),
		auth:      auth,
		profiles:  profiles,
		tracking:  NewTrackingService(feed, publisher.NewHub[entities.Vehicle](8), profiles, notifier, m, logger),
		publisher: pub,
		metrics:   m,
		feed:      feed,
	}
}
