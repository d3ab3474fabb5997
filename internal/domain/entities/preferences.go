package entities

import "time"

// Preferences holds a user's profile toggles.
type Preferences struct {
	UserID           string    `json:"user_id"`
	Notifications    bool      `json:"notifications"`
	LocationServices bool      `json:"location_services"`
	PriceAlerts      bool      `json:"price_alerts"`
	RealTimeUpdates  bool      `json:"real_time_updates"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings a new user starts with: everything
// on except price alerts.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:           userID,
		Notifications:    true,
		LocationServices: true,
		PriceAlerts:      false,
		RealTimeUpdates:  true,
		UpdatedAt:        time.Now(),
	}
}

// PreferencesPatch is a partial update; nil fields are left unchanged.
type PreferencesPatch struct {
	Notifications    *bool `json:"notifications"`
	LocationServices *bool `json:"location_services"`
	PriceAlerts      *bool `json:"price_alerts"`
	RealTimeUpdates  *bool `json:"real_time_updates"`
}

// Apply copies the non-nil fields of patch onto p.
func (p *Preferences) Apply(patch PreferencesPatch) {
	if patch.Notifications != nil {
		p.Notifications = *patch.Notifications
	}
	if patch.LocationServices != nil {
		p.LocationServices = *patch.LocationServices
	}
	if patch.PriceAlerts != nil {
		p.PriceAlerts = *patch.PriceAlerts
	}
	if patch.RealTimeUpdates != nil {
		p.RealTimeUpdates = *patch.RealTimeUpdates
	}
	p.UpdatedAt = time.Now()
}
