package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health reports that the process is serving. It never touches the store.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings the zone store and reports how long the round trip took.
func (h *Handler) Ready(c *gin.Context) {
	start := time.Now()
	err := h.zones.Ping(c.Request.Context())
	elapsed := time.Since(start)

	if err != nil {
		h.logger.Warn("store ping failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"store":  "database error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"store":      "ok",
		"latency_ms": elapsed.Milliseconds(),
	})
}
