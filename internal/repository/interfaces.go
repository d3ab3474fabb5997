package repository

import (
	"context"
	"errors"

	"citymove/internal/domain/entities"
)

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrSessionNotFound  = errors.New("session not found")
	ErrPreferencesUnset = errors.New("preferences not found")
)

// VehicleRepository is the tabular vehicle store. List returns vehicles ordered
// by price ascending.
type VehicleRepository interface {
	List(ctx context.Context) ([]entities.Vehicle, error)
	GetByID(ctx context.Context, id string) (*entities.Vehicle, error)
	Upsert(ctx context.Context, vehicle *entities.Vehicle) error
	UpdateLocation(ctx context.Context, id string, loc entities.Location) (*entities.Vehicle, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*entities.Preferences, error)
	Save(ctx context.Context, prefs *entities.Preferences) error
	ListPriceAlertSubscribers(ctx context.Context) ([]string, error)
}

// SessionStore holds bearer tokens until they expire.
type SessionStore interface {
	Put(ctx context.Context, session *entities.Session) error
	Get(ctx context.Context, token string) (*entities.Session, error)
	Delete(ctx context.Context, token string) error
}
