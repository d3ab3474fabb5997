package memory

import (
	"context"
	"sort"
	"sync"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

// VehicleRepository keeps vehicles in a map guarded by an RWMutex. Reads hand
// out clones so callers can't mutate stored state.
type VehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*entities.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{
		vehicles: make(map[string]*entities.Vehicle),
	}
}

// NewSeededVehicleRepository returns a repository preloaded with
// FixtureVehicles.
func NewSeededVehicleRepository() *VehicleRepository {
	r := NewVehicleRepository()
	for _, v := range FixtureVehicles() {
		v := v
		r.vehicles[v.ID] = &v
	}
	return r
}

func (r *VehicleRepository) List(ctx context.Context) ([]entities.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v.Clone())
	}
	// Map iteration order is random; ID breaks price ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*entities.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, exists := r.vehicles[id]
	if !exists {
		return nil, repository.ErrVehicleNotFound
	}
	clone := v.Clone()
	return &clone, nil
}

func (r *VehicleRepository) Upsert(ctx context.Context, vehicle *entities.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := vehicle.Clone()
	r.vehicles[vehicle.ID] = &clone
	return nil
}

func (r *VehicleRepository) UpdateLocation(ctx context.Context, id string, loc entities.Location) (*entities.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.vehicles[id]
	if !exists {
		return nil, repository.ErrVehicleNotFound
	}
	v.MoveTo(loc)
	clone := v.Clone()
	return &clone, nil
}
