package middleware

import (
	"github.com/gin-gonic/gin"
	"log/slog"
)

func RequestLoggerMiddleware(c *gin.Context) {
	c.Next()

	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"request_id", c.GetString(RequestIDContextValueKey),
	}
	if latency, ok := SinceArrival(c); ok {
		attrs = append(attrs, "latency_us", latency.Microseconds())
	}
	if clientID := c.GetString(ClientIDContextValueKey); clientID != "" {
		attrs = append(attrs, "client_id", clientID)
	}

	if c.Writer.Status() >= 500 {
		slog.Error("request served", attrs...)
		return
	}
	slog.Info("request served", attrs...)
}
