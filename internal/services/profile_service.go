package services

import (
	"context"
	"errors"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

// Profile is what the profile screen shows: the account plus its toggles.
type Profile struct {
	User        *entities.User        `json:"user"`
	Preferences *entities.Preferences `json:"preferences"`
}

type ProfileService struct {
	users repository.UserRepository
	prefs repository.PreferenceRepository
}

func NewProfileService(users repository.UserRepository, prefs repository.PreferenceRepository) *ProfileService {
	return &ProfileService{users: users, prefs: prefs}
}

// Profile returns the user and their preferences.
func (s *ProfileService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Preferences: prefs}, nil
}

// Get returns the stored preferences, or the defaults if the user never
// saved any.
func (s *ProfileService) Get(ctx context.Context, userID string) (*entities.Preferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if errors.Is(err, repository.ErrPreferencesUnset) {
		return entities.DefaultPreferences(userID), nil
	}
	return p, err
}

// Update applies patch on top of the current preferences and saves them.
func (s *ProfileService) Update(ctx context.Context, userID string, patch entities.PreferencesPatch) (*entities.Preferences, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Apply(patch)
	if err := s.prefs.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PriceAlertSubscribers lists users with both notifications and price alerts
// switched on.
func (s *ProfileService) PriceAlertSubscribers(ctx context.Context) ([]string, error) {
	return s.prefs.ListPriceAlertSubscribers(ctx)
}
