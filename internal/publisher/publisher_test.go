package publisher

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citymove/internal/domain/entities"
)

func TestHub_FanOut(t *testing.T) {
	hub := NewHub[int](4)
	ctx := context.Background()

	a, cancelA := hub.Subscribe(ctx)
	defer cancelA()
	b, cancelB := hub.Subscribe(ctx)
	defer cancelB()

	assert.Equal(t, 2, hub.Publish(7))
	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub[int](1)
	ch, cancel := hub.Subscribe(context.Background())
	defer cancel()

	assert.Equal(t, 1, hub.Publish(1))
	assert.Equal(t, 0, hub.Publish(2))
	assert.Equal(t, 1, <-ch)
}

func TestHub_CancelAndContext(t *testing.T) {
	hub := NewHub[string](1)

	ch, cancel := hub.Subscribe(context.Background())
	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	ctx, stop := context.WithCancel(context.Background())
	ch2, _ := hub.Subscribe(ctx)
	stop()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, open = <-ch2
	assert.False(t, open)
}

func TestHub_CancelReleasesContextWatch(t *testing.T) {
	hub := NewHub[int](1)
	ctx := context.Background()

	before := runtime.NumGoroutine()
	for i := 0; i < 100; i++ {
		ch, cancel := hub.Subscribe(ctx)
		cancel()
		cancel()
		if _, ok := <-ch; ok {
			t.Fatal("Expected channel to be closed after cancel")
		}
	}

	if hub.Len() != 0 {
		t.Errorf("Expected no subscribers, got %d", hub.Len())
	}
	if after := runtime.NumGoroutine(); after > before+5 {
		t.Errorf("Expected goroutine count to stay near %d, got %d", before, after)
	}
}

func TestHub_SubscribeWithDoneContext(t *testing.T) {
	hub := NewHub[int](1)
	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()

	ch, cancel := hub.Subscribe(ctx)
	defer cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Expected channel to close for an already cancelled context")
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub[int](1)
	ch, cancel := hub.Subscribe(context.Background())
	hub.Close()
	hub.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	late, _ := hub.Subscribe(context.Background())
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish(1))
}

func TestLocalFeed_RoundTrip(t *testing.T) {
	feed := NewLocalFeed(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan entities.Vehicle, 1)
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx, func(v entities.Vehicle) { got <- v }) }()

	require.NoError(t, feed.PublishVehicle(ctx, entities.Vehicle{ID: "1", Price: 15}))
	select {
	case v := <-got:
		assert.Equal(t, "1", v.ID)
	case <-time.After(time.Second):
		t.Fatal("vehicle was not delivered")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestLocalFeed_PublishRespectsContext(t *testing.T) {
	feed := NewLocalFeed(1)
	require.NoError(t, feed.PublishVehicle(context.Background(), entities.Vehicle{ID: "1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, feed.PublishVehicle(ctx, entities.Vehicle{ID: "2"}), context.Canceled)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "citymove.vehicles.bus.tdr1v", Subject("citymove.vehicles", entities.CategoryBus, "tdr1v"))
	assert.Equal(t, "p.shared_taxi._", Subject("p", entities.Category("shared taxi"), ""))
	assert.Equal(t, "p.a_b__.x", Subject("p", entities.Category("a.b*>"), "x"))
}

func TestNewVehicleMessage(t *testing.T) {
	v := entities.Vehicle{ID: "1", Category: entities.CategoryBus, Position: entities.NewLocation(12.9716, 77.5946)}
	msg := NewVehicleMessage(v, 5)
	assert.Equal(t, "tdr1v", msg.Geohash)
	assert.Equal(t, "1", msg.Vehicle.ID)
	assert.False(t, msg.PublishedAt.IsZero())
}
