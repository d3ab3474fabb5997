package entities

import "time"

// User is an account that can sign in. PasswordHash never leaves the service
// layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a User with the current timestamp.
func NewUser(id, email string, passwordHash []byte) *User {
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// SessionPurpose distinguishes sign-in sessions from one-shot password reset
// tokens. Both live in the same session store.
type SessionPurpose string

const (
	SessionPurposeAuth  SessionPurpose = "auth"
	SessionPurposeReset SessionPurpose = "reset"
)

// Session is an opaque bearer token bound to a user. It is passed explicitly
// through request contexts instead of living in package state.
type Session struct {
	Token     string         `json:"access_token"`
	UserID    string         `json:"user_id"`
	Email     string         `json:"email"`
	Purpose   SessionPurpose `json:"purpose"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// NewSession creates a session that expires after ttl.
func NewSession(token string, user *User, purpose SessionPurpose, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is no longer valid at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// AuthEventType is the kind of session state change.
type AuthEventType string

const (
	AuthEventSignedIn        AuthEventType = "SIGNED_IN"
	AuthEventSignedOut       AuthEventType = "SIGNED_OUT"
	AuthEventPasswordRecover AuthEventType = "PASSWORD_RECOVERY"
)

// AuthEvent is published whenever a user's session state changes.
type AuthEvent struct {
	Type   AuthEventType `json:"event"`
	UserID string        `json:"user_id"`
	At     time.Time     `json:"at"`
}
