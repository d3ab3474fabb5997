// Package middleware provides HTTP middleware for the Gin router.
//
// Go Learning Note — Middleware Pattern (Gin):
// In Gin, middleware is any function with the signature `gin.HandlerFunc`, which
// is `func(*gin.Context)`. Middleware functions form a chain: each one runs,
// optionally calls c.Next() to pass control to the next handler, and can call
// c.Abort() to stop the chain.
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"citymove/internal/domain/entities"
	"citymove/internal/services"
)

// SessionKey is the gin context key holding the *entities.Session of an
// authenticated request.
const SessionKey = "session"

type sessionCtxKey struct{}

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*entities.Session, error)
}

// RequireSession validates "Authorization: Bearer <token>" and stores the
// session both on the gin context and on the request's context.Context, so
// services further down can read it without gin.
//
// Go Learning Note — c.Abort():
// c.Abort() prevents subsequent handlers in the chain from running. Always
// pair error responses with c.Abort() in middleware.
func RequireSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			c.Abort()
			return
		}

		session, err := resolver.Session(c.Request.Context(), token)
		if err != nil {
			status := http.StatusInternalServerError
			msg := err.Error()
			if errors.Is(err, services.ErrInvalidSession) {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set(SessionKey, session)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// RequireOperator admits requests carrying one of keys in X-API-Key. With no
// keys configured every request is refused.
func RequireOperator(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-Key")
		for _, k := range keys {
			if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator key required"})
		c.Abort()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	// strings.SplitN splits into at most 2 parts, handling tokens with spaces.
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetSession retrieves the session set by RequireSession.
//
// Go Learning Note — Type Assertion:
// c.Get() returns (interface{}, bool). The `val, ok := x.(T)` form returns
// ok=false instead of panicking when the value is missing or of another type.
func GetSession(c *gin.Context) (*entities.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*entities.Session)
	return s, ok
}

func WithSession(ctx context.Context, s *entities.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*entities.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*entities.Session)
	return s, ok && s != nil
}
