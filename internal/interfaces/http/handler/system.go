package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/billing"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// RedisPing checks Redis reachability; wraps the client's Ping call
type RedisPing func(ctx context.Context) error

// SystemHandler exposes health and overview endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	redis     RedisPing
	customers billing.CustomerRepository
	version   string
	startedAt time.Time
}

// NewSystemHandler creates a SystemHandler. redis may be nil when running
// without a Redis instance.
func NewSystemHandler(db Pinger, redis RedisPing, customers billing.CustomerRepository, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		redis:       redis,
		customers:   customers,
		version:     version,
		startedAt:   time.Now(),
	}
}

// Health reports liveness
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready reports readiness: the process is only ready when its backing stores
// answer.
// GET /ready
func (h *SystemHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.Ping(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": healthy, "checks": checks})
}

// Overview returns the subscriber counts operators watch
// GET /api/v1/overview
func (h *SystemHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	counts := gin.H{}
	for _, status := range []billing.CustomerStatus{
		billing.CustomerStatusActive,
		billing.CustomerStatusIsolated,
		billing.CustomerStatusInactive,
	} {
		count, err := h.customers.CountByStatus(ctx, status)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		counts[string(status)] = count
	}

	h.Success(c, gin.H{"customers": counts})
}
