package middleware

import (
	"github.com/gin-gonic/gin"
	"log/slog"
	"net/http"
)

const InternalServerErrorMessage = "Internal server error"

// RecoveryMiddleware turns a panic into the generic 500 JSON body.
func RecoveryMiddleware(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("PANIC recovered", "request_id", c.GetString(RequestIDContextValueKey), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": InternalServerErrorMessage})
		}
	}()
	c.Next()
}
