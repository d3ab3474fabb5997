package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*entities.Preferences, error) {
	q := `
SELECT user_id, notifications, location_services, price_alerts, real_time_updates, updated_at
FROM user_preferences WHERE user_id = $1`
	var p entities.Preferences
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.Notifications, &p.LocationServices, &p.PriceAlerts, &p.RealTimeUpdates, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrPreferencesUnset
	}
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	return &p, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, p *entities.Preferences) error {
	q := `
INSERT INTO user_preferences (user_id, notifications, location_services, price_alerts, real_time_updates, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
  notifications = EXCLUDED.notifications,
  location_services = EXCLUDED.location_services,
  price_alerts = EXCLUDED.price_alerts,
  real_time_updates = EXCLUDED.real_time_updates,
  updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.Notifications, p.LocationServices, p.PriceAlerts, p.RealTimeUpdates, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) ListPriceAlertSubscribers(ctx context.Context) ([]string, error) {
	q := `SELECT user_id FROM user_preferences WHERE price_alerts AND notifications ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
