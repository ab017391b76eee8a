package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is a dependency whose reachability is reported by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        *gorm.DB
	cache     Pinger
	startTime time.Time
	version   string
}

// NewHealthHandler builds the liveness and readiness handler. cache may be nil when the stats
// cache is disabled.
func NewHealthHandler(db *gorm.DB, cache Pinger, startTime time.Time, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		startTime: startTime,
		version:   version,
	}
}

func (h *HealthHandler) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  int64(uptime.Seconds()),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "failed to get underlying DB",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"db": gin.H{
				"status": "down",
				"error":  err.Error(),
			},
		})
		return
	}

	uptime := time.Since(h.startTime)

	resp := gin.H{
		"status":  "ready",
		"version": h.version,
		"uptime":  int64(uptime.Seconds()),
		"db": gin.H{
			"status": "up",
		},
	}

	// the stats cache is optional, so a dead cache degrades but stays ready
	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			resp["cache"] = gin.H{"status": "down", "error": err.Error()}
		} else {
			resp["cache"] = gin.H{"status": "up"}
		}
	}

	c.JSON(http.StatusOK, resp)
}
