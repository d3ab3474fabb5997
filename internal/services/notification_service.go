package services

import (
	"log/slog"
	"time"

	"citymove/internal/domain/entities"
	"citymove/internal/metrics"
)

// NotificationService delivers user-facing notices. Delivery is a structured
// log line; a push or mail client would hang off the same methods.
type NotificationService struct {
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewNotificationService(logger *slog.Logger, m *metrics.Collector) *NotificationService {
	return &NotificationService{logger: logger.With("component", "notifications"), metrics: m}
}

// NotifyPriceChange tells a subscriber that a vehicle's fare moved.
func (s *NotificationService) NotifyPriceChange(userID string, v entities.Vehicle, oldPrice float64) {
	s.metrics.PriceAlertInc()
	s.logger.Info("price alert",
		"user_id", userID,
		"vehicle_id", v.ID,
		"vehicle_name", v.Name,
		"old_price", oldPrice,
		"new_price", v.Price,
	)
}

// SendPasswordReset tells the account holder a reset link was issued. The
// token itself is never logged.
func (s *NotificationService) SendPasswordReset(email string, expiresAt time.Time) {
	s.logger.Info("password reset issued", "email", email, "expires_at", expiresAt)
}
