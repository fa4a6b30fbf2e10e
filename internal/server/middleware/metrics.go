package middleware

import (
	"github.com/gin-gonic/gin"
	"time"
)

type HTTPMetricsRecorder interface {
	ObserveHTTPRequest(method, routePattern string, statusCode int, duration time.Duration)
}

// MetricsMiddleware observes durations by route pattern to keep label cardinality bounded.
func MetricsMiddleware(recorder HTTPMetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
