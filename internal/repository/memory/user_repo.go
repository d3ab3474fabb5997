package memory

import (
	"context"
	"strings"
	"sync"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entities.User
	byEmail map[string]string // lower-cased email → user ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*entities.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return repository.ErrUserExists
	}
	u := *user
	r.users[user.ID] = &u
	r.byEmail[key] = user.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	u := *r.users[id]
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}
