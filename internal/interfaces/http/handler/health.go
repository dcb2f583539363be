package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/infrastructure/persistence"
	"github.com/customeridentity/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolStatter is implemented by stores that expose connection pool statistics
type PoolStatter interface {
	Stats() (persistence.ConnectionStats, error)
}

var _ PoolStatter = (*persistence.Database)(nil)

// HealthHandler reports liveness together with database reachability
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler. timeout bounds the database ping.
func NewHealthHandler(db Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{db: db, timeout: timeout, now: time.Now}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "DOWN",
			Database: "DOWN",
			Time:     h.now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "UP",
		Database: "UP",
		Pool:     h.poolStats(c),
		Time:     h.now(),
	})
}

func (h *HealthHandler) poolStats(c *gin.Context) *dto.PoolStats {
	statter, ok := h.db.(PoolStatter)
	if !ok {
		return nil
	}
	stats, err := statter.Stats()
	if err != nil {
		logger.GetGinLogger(c).Warn("Failed to read pool stats", zap.Error(err))
		return nil
	}
	return &dto.PoolStats{
		MaxOpen:        stats.MaxOpenConnections,
		Open:           stats.OpenConnections,
		InUse:          stats.InUse,
		Idle:           stats.Idle,
		WaitCount:      stats.WaitCount,
		WaitDurationMs: stats.WaitDuration.Milliseconds(),
	}
}
