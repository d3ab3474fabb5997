package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"citymove/internal/logging"
	"citymove/internal/metrics"
)

// Observe logs each request and records it in m. The route label is the gin
// route template so IDs in paths do not blow up metric cardinality.
func Observe(logger *slog.Logger, m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		m.ObserveRequest(c.Request.Method, route, status, elapsed)
		logging.LogHTTPRequest(logger, c.Request.Method, c.Request.URL.Path, status,
			float64(elapsed.Microseconds())/1000,
			slog.String("route", route),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
