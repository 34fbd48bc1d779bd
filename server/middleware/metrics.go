package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tokengate/observability"
)

// Metrics records request count and duration per route template.
// Unmatched routes are recorded as "unmatched" so paths never become labels.
func Metrics(m *observability.AuthMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
