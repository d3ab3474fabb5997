package memory

import (
	"context"
	"sync"
	"time"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

// SessionStore keeps sessions in memory and sweeps expired ones in the
// background. It only works for a single-instance deployment; the redis
// package provides the shared equivalent.
//
// Go Learning Note — Channels for Signaling:
// The `stop` field is a `chan struct{}` used purely for signaling. close(stop)
// makes every receive on it return immediately, which ends the sweeper loop.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
	stop     chan struct{}
	once     sync.Once
}

// NewSessionStore creates a SessionStore and starts a goroutine that removes
// expired sessions every sweepInterval.
func NewSessionStore(sweepInterval time.Duration) *SessionStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	s := &SessionStore{
		sessions: make(map[string]*entities.Session),
		stop:     make(chan struct{}),
	}
	go s.sweepExpired(sweepInterval)
	return s
}

func (s *SessionStore) Put(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.Token] = &cp
	return nil
}

// Get returns ErrSessionNotFound for unknown and expired tokens alike.
func (s *SessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[token]
	if !exists || session.Expired(time.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Go Learning Note — select Statement:
// select blocks until one of the cases can proceed. Here it waits for either
// the ticker (do cleanup) or the stop signal (exit).
func (s *SessionStore) sweepExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for token, session := range s.sessions {
				if session.Expired(now) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Close stops the sweeper goroutine. It is safe to call more than once.
func (s *SessionStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}
