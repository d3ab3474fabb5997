package publisher

import (
	"context"

	"citymove/internal/domain/entities"
)

// LocalFeed is an in-process live feed: whatever is published is handed to
// the single Run loop. It stands in for a broker in single-instance setups.
type LocalFeed struct {
	updates chan entities.Vehicle
}

func NewLocalFeed(buffer int) *LocalFeed {
	if buffer <= 0 {
		buffer = 64
	}
	return &LocalFeed{updates: make(chan entities.Vehicle, buffer)}
}

// PublishVehicle queues v, blocking while the buffer is full.
func (f *LocalFeed) PublishVehicle(ctx context.Context, v entities.Vehicle) error {
	select {
	case f.updates <- v.Clone():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run hands every queued vehicle to handle until ctx is done.
func (f *LocalFeed) Run(ctx context.Context, handle func(entities.Vehicle)) error {
	for {
		select {
		case v := <-f.updates:
			handle(v)
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *LocalFeed) Name() string { return "local" }
