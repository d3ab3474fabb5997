package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"citymove/internal/config"
	"citymove/internal/domain/entities"
	"citymove/internal/metrics"
	"citymove/internal/publisher"
	"citymove/internal/repository"
	"citymove/pkg/utils"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", maxPasswordLength)
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("session is invalid or has expired")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles accounts and bearer sessions. State changes are
// published on the events hub instead of through package-level callbacks.
type AuthService struct {
	users    repository.UserRepository
	prefs    repository.PreferenceRepository
	sessions repository.SessionStore
	events   *publisher.Hub[entities.AuthEvent]
	notifier *NotificationService
	cfg      config.SessionConfig
	metrics  *metrics.Collector
	logger   *slog.Logger
	hashCost int
}

func NewAuthService(
	users repository.UserRepository,
	prefs repository.PreferenceRepository,
	sessions repository.SessionStore,
	events *publisher.Hub[entities.AuthEvent],
	notifier *NotificationService,
	cfg config.SessionConfig,
	m *metrics.Collector,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		prefs:    prefs,
		sessions: sessions,
		events:   events,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost. Tests lower it to bcrypt.MinCost.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

// SignUp creates an account with default preferences.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*entities.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := entities.NewUser(utils.GenerateID(), email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := s.prefs.Save(ctx, entities.DefaultPreferences(user.ID)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

// SignIn checks the password and opens a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entities.Session, error) {
	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		s.metrics.SignInInc("rejected")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.metrics.SignInInc("rejected")
		return nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user, entities.SessionPurposeAuth, s.cfg.TTL)
	if err != nil {
		return nil, err
	}
	s.metrics.SignInInc("ok")
	s.publish(entities.AuthEventSignedIn, user.ID)
	return session, nil
}

// SignOut ends the session. Unknown tokens are not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.publish(entities.AuthEventSignedOut, session.UserID)
	return nil
}

// Session resolves a bearer token into a live sign-in session.
func (s *AuthService) Session(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	if session.Purpose != entities.SessionPurposeAuth {
		return nil, ErrInvalidSession
	}
	return session, nil
}

// CurrentUser returns the account behind a bearer token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*entities.User, error) {
	session, err := s.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidSession
	}
	return user, err
}

// RequestPasswordReset issues a one-time reset token for email. Unknown
// addresses return (nil, nil) so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*entities.Session, error) {
	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		s.logger.DebugContext(ctx, "password reset for unknown email")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, user, entities.SessionPurposeReset, s.cfg.ResetTTL)
	if err != nil {
		return nil, err
	}
	s.notifier.SendPasswordReset(user.Email, session.ExpiresAt)
	s.publish(entities.AuthEventPasswordRecover, user.ID)
	return session, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if session.Purpose != entities.SessionPurposeReset {
		return ErrInvalidResetToken
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, session.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return s.sessions.Delete(ctx, token)
}

// Events subscribes to auth state changes.
func (s *AuthService) Events(ctx context.Context) (<-chan entities.AuthEvent, func()) {
	return s.events.Subscribe(ctx)
}

func (s *AuthService) openSession(ctx context.Context, user *entities.User, purpose entities.SessionPurpose, ttl time.Duration) (*entities.Session, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return nil, err
	}
	session := entities.NewSession(token, user, purpose, ttl)
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AuthService) hashPassword(password string) ([]byte, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
}

func (s *AuthService) publish(t entities.AuthEventType, userID string) {
	s.events.Publish(entities.AuthEvent{Type: t, UserID: userID, At: time.Now()})
}

func validateEmail(email string) (string, error) {
	email = utils.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
