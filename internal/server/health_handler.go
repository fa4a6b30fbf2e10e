package server

import (
	"github.com/gin-gonic/gin"
	"github.com/techsaints/landing/internal/server/middleware"
	"log/slog"
	"net/http"
)

func healthHandler(ctx *gin.Context) {
	logger := slog.With("handler", "health")
	if queueTime, exists := middleware.SinceArrival(ctx); exists {
		logger.Debug("Queue Time (us)", "queueTime", queueTime.Microseconds())
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
