package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

const keyPrefix = "citymove:session:"

// SessionStore stores each session as JSON under its own key with a TTL
// matching the session's expiry, so Redis does the sweeping.
type SessionStore struct {
	pool *redis.Pool
}

func NewSessionStore(pool *redis.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func sessionKey(token string) string {
	return keyPrefix + token
}

func (s *SessionStore) Put(ctx context.Context, session *entities.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, session.Token)
	}
	b, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "cannot encode session")
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get Redis connection")
	}
	defer conn.Close()

	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	if _, err := conn.Do("SET", sessionKey(session.Token), b, "PX", ms); err != nil {
		return errors.Wrapf(err, "cannot store session")
	}
	return nil
}

// Get returns repository.ErrSessionNotFound for unknown and expired tokens.
func (s *SessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get Redis connection")
	}
	defer conn.Close()

	b, err := redis.Bytes(conn.Do("GET", sessionKey(token)))
	if err == redis.ErrNil {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot read session")
	}

	var session entities.Session
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, errors.Wrap(err, "cannot decode session")
	}
	if session.Expired(time.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get Redis connection")
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", sessionKey(token)); err != nil {
		return errors.Wrap(err, "cannot delete session")
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *SessionStore) Ping(ctx context.Context) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get Redis connection")
	}
	defer conn.Close()

	if _, err := redis.String(conn.Do("PING")); err != nil {
		return errors.Wrap(err, "cannot ping Redis")
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.pool.Close()
}
