package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	LogError(logger, "vehicle store unavailable", errors.New("connection refused"),
		slog.String("component", "vehicle_service"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "vehicle store unavailable", entry["msg"])
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "vehicle_service", entry["component"])
}

func TestLogOperation_SkipsZeroDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	LogOperation(logger, "select", slog.Duration("duration", 0), slog.Int("results", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "duration")
	assert.Equal(t, float64(3), entry["results"])

	buf.Reset()
	LogOperation(logger, "select", slog.Duration("duration", time.Millisecond))
	assert.Contains(t, buf.String(), `"duration"`)
}

func TestLogHTTPRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "text")

	LogHTTPRequest(logger, "GET", "/vehicles", 200, 1.5)
	out := buf.String()
	assert.Contains(t, out, "msg=http_request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "status=200")
}

func TestNilLoggerIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "x", errors.New("y"))
		LogOperation(nil, "x")
		LogHTTPRequest(nil, "GET", "/", 200, 0)
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
