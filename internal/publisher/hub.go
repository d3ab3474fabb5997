package publisher

import (
	"context"
	"sync"
)

// Hub fans values out to every current subscriber. A subscriber that falls
// behind loses values rather than stalling Publish.
type Hub[T any] struct {
	mu     sync.RWMutex
	subs   map[int]chan T
	nextID int
	buffer int
	closed bool
}

// NewHub creates a hub whose subscriber channels hold up to buffer values.
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub[T]{
		subs:   make(map[int]chan T),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The channel is closed when cancel is
// called, when ctx is done, or when the hub is closed.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	remove := func() {
		once.Do(func() { h.remove(id) })
	}
	stop := context.AfterFunc(ctx, remove)
	return ch, func() {
		stop()
		remove()
	}
}

func (h *Hub[T]) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers v to every subscriber with room in its buffer and returns
// how many received it.
func (h *Hub[T]) Publish(v T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, ch := range h.subs {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later Subscribe calls get an
// already-closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
