package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"citymove/internal/domain/entities"
	"citymove/internal/logging"
	"citymove/internal/metrics"
	"citymove/internal/services"
)

type staticResolver map[string]*entities.Session

func (r staticResolver) Session(ctx context.Context, token string) (*entities.Session, error) {
	if s, ok := r[token]; ok {
		return s, nil
	}
	return nil, services.ErrInvalidSession
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	session := &entities.Session{Token: "good", UserID: "u1", Purpose: entities.SessionPurposeAuth, ExpiresAt: time.Now().Add(time.Hour)}

	engine := gin.New()
	engine.GET("/me", RequireSession(staticResolver{"good": session}), func(c *gin.Context) {
		s, ok := GetSession(c)
		fromCtx, ok2 := SessionFromContext(c.Request.Context())
		if !ok || !ok2 || s != fromCtx {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, s.UserID)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequireOperator(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(keys []string, header string) int {
		engine := gin.New()
		engine.GET("/op", RequireOperator(keys), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		req := httptest.NewRequest(http.MethodGet, "/op", nil)
		if header != "" {
			req.Header.Set("X-API-Key", header)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, run([]string{"k1", "k2"}, "k2"))
	assert.Equal(t, http.StatusUnauthorized, run([]string{"k1"}, "nope"))
	assert.Equal(t, http.StatusUnauthorized, run([]string{"k1"}, ""))
	assert.Equal(t, http.StatusUnauthorized, run(nil, ""))
}

func TestObserve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewCollector()

	engine := gin.New()
	engine.Use(Observe(logging.New(io.Discard, slog.LevelInfo, "json"), m))
	engine.GET("/vehicles/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/vehicles/1", "/vehicles/2", "/nowhere"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/vehicles/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}
