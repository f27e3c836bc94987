package middleware

import (
	"strconv"
	"time"

	"account-provisioner/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records latency per route template, never per raw path,
// so fingerprints in URLs do not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
