package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// GET /api/health
func Health(db Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		now := time.Now().UTC().Format(time.RFC3339)
		if err := db.Ping(ctx); err != nil {
			log.Warn("health check: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":   false,
				"message":   "Database unavailable",
				"database":  "disconnected",
				"timestamp": now,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Course Management API is running!",
			"database":  "connected",
			"timestamp": now,
		})
	}
}
