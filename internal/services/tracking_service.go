package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"citymove/internal/domain/entities"
	"citymove/internal/metrics"
	"citymove/internal/publisher"
)

// Feed is a source of live vehicle updates. Run blocks until ctx is done and
// calls handle once per update, from a single goroutine.
type Feed interface {
	Name() string
	Run(ctx context.Context, handle func(entities.Vehicle)) error
}

// TrackingService consumes the live feed, fans updates out to stream
// subscribers, and raises price alerts when a vehicle's fare changes.
type TrackingService struct {
	feed     Feed
	hub      *publisher.Hub[entities.Vehicle]
	profiles *ProfileService
	notifier *NotificationService
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu     sync.Mutex
	prices map[string]float64
}

func NewTrackingService(
	feed Feed,
	hub *publisher.Hub[entities.Vehicle],
	profiles *ProfileService,
	notifier *NotificationService,
	m *metrics.Collector,
	logger *slog.Logger,
) *TrackingService {
	return &TrackingService{
		feed:     feed,
		hub:      hub,
		profiles: profiles,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		prices:   make(map[string]float64),
	}
}

// Prime records the current prices so the first update of each vehicle can
// be compared against something.
func (s *TrackingService) Prime(vehicles []entities.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vehicles {
		s.prices[v.ID] = v.Price
	}
}

// Run consumes the feed until ctx is done.
func (s *TrackingService) Run(ctx context.Context) error {
	s.logger.Info("tracking started", "feed", s.feed.Name())
	defer s.logger.Info("tracking stopped", "feed", s.feed.Name())

	return s.feed.Run(ctx, func(v entities.Vehicle) {
		s.Handle(ctx, v)
	})
}

// Handle processes one update.
func (s *TrackingService) Handle(ctx context.Context, v entities.Vehicle) {
	s.metrics.LiveUpdateInc(s.feed.Name())
	s.hub.Publish(v)

	s.mu.Lock()
	old, seen := s.prices[v.ID]
	s.prices[v.ID] = v.Price
	s.mu.Unlock()

	if seen && old != v.Price {
		s.alertPriceChange(ctx, v, old)
	}
}

// Subscribe returns a channel of live updates for one stream client.
func (s *TrackingService) Subscribe(ctx context.Context) (<-chan entities.Vehicle, func()) {
	return s.hub.Subscribe(ctx)
}

func (s *TrackingService) alertPriceChange(ctx context.Context, v entities.Vehicle, old float64) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	users, err := s.profiles.PriceAlertSubscribers(ctx)
	if err != nil {
		s.logger.Warn("price alert subscribers unavailable", "vehicle_id", v.ID, "error", err)
		return
	}
	for _, userID := range users {
		s.notifier.NotifyPriceChange(userID, v, old)
	}
}
