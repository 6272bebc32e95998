package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/core/port"
	"taskboard/internal/core/telemetry"
)

// MetricsMiddleware counts requests by route template. probe may be nil.
func MetricsMiddleware(metrics *telemetry.AppMetrics, probe port.Telemetry) gin.HandlerFunc {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start)

		metrics.RecordRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), duration)
		probe.RecordHTTPOperation(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), duration)
	}
}
