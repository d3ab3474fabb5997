package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citymove/internal/domain/entities"
)

func TestAuthService_SignUpAndSignIn(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	user, err := env.auth.SignUp(ctx, "  Commuter@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "commuter@example.com", user.Email)
	assert.NotEqual(t, []byte("secret1"), user.PasswordHash)

	prefs, err := env.profiles.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.Notifications)
	assert.False(t, prefs.PriceAlerts)

	session, err := env.auth.SignIn(ctx, "COMMUTER@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, entities.SessionPurposeAuth, session.Purpose)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	got, err := env.auth.Session(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)

	current, err := env.auth.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SignIns.WithLabelValues("ok")))
}

func TestAuthService_SignUpValidation(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = env.auth.SignUp(ctx, "Name <a@b.com>", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = env.auth.SignUp(ctx, "a@b.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = env.auth.SignUp(ctx, "a@b.com", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = env.auth.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	_, err = env.auth.SignUp(ctx, "A@B.com", "another1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_SignInRejected(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	_, err = env.auth.SignIn(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.SignIn(ctx, "nobody@b.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.SignIns.WithLabelValues("rejected")))
}

func TestAuthService_SignOut(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	events, cancel := env.auth.Events(ctx)
	defer cancel()

	_, err := env.auth.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	session, err := env.auth.SignIn(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, env.auth.SignOut(ctx, session.Token))
	_, err = env.auth.Session(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Signing out twice is harmless.
	require.NoError(t, env.auth.SignOut(ctx, session.Token))

	assert.Equal(t, entities.AuthEventSignedIn, (<-events).Type)
	ev := <-events
	assert.Equal(t, entities.AuthEventSignedOut, ev.Type)
	assert.Equal(t, session.UserID, ev.UserID)
}

func TestAuthService_SessionRejectsUnknownTokens(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	_, err := env.auth.Session(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = env.auth.Session(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = env.auth.CurrentUser(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_PasswordReset(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	events, cancel := env.auth.Events(ctx)
	defer cancel()

	_, err := env.auth.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	reset, err := env.auth.RequestPasswordReset(ctx, "A@b.com")
	require.NoError(t, err)
	require.NotNil(t, reset)
	assert.Equal(t, entities.SessionPurposeReset, reset.Purpose)
	assert.Equal(t, entities.AuthEventPasswordRecover, (<-events).Type)

	// A reset token is not a sign-in session.
	_, err = env.auth.Session(ctx, reset.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.ErrorIs(t, env.auth.ResetPassword(ctx, reset.Token, "123"), ErrWeakPassword)
	require.NoError(t, env.auth.ResetPassword(ctx, reset.Token, "new-secret"))

	_, err = env.auth.SignIn(ctx, "a@b.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.SignIn(ctx, "a@b.com", "new-secret")
	assert.NoError(t, err)

	// Tokens are single use.
	assert.ErrorIs(t, env.auth.ResetPassword(ctx, reset.Token, "another-one"), ErrInvalidResetToken)
}

func TestAuthService_PasswordResetUnknownEmail(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	reset, err := env.auth.RequestPasswordReset(ctx, "ghost@b.com")
	assert.NoError(t, err)
	assert.Nil(t, reset)
}

func TestAuthService_ResetRejectsSignInToken(t *testing.T) {
	env := setupServices()
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	session, err := env.auth.SignIn(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	err = env.auth.ResetPassword(ctx, session.Token, "new-secret")
	assert.True(t, errors.Is(err, ErrInvalidResetToken))
}
