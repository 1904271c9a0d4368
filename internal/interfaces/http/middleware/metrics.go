package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency.  The path label is the route
// template, so ids do not explode label cardinality; unmatched routes share
// one label.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	if m == nil {
		m = prometheus.NewNopMetrics()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
