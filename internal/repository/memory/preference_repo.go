package memory

import (
	"context"
	"sort"
	"sync"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

type PreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]*entities.Preferences
}

func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{
		prefs: make(map[string]*entities.Preferences),
	}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*entities.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.prefs[userID]
	if !exists {
		return nil, repository.ErrPreferencesUnset
	}
	out := *p
	return &out, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, prefs *entities.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *prefs
	r.prefs[prefs.UserID] = &p
	return nil
}

func (r *PreferenceRepository) ListPriceAlertSubscribers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, p := range r.prefs {
		if p.PriceAlerts && p.Notifications {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
