package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domis382/Redibo-back-wtt/internal/infra/redis"
)

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	pool      *pgxpool.Pool
	redis     *redis.Client
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC(), pool: pool, redis: redisClient}
}

// Status reports liveness.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness pings the backing stores.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, ReadinessResponse{Status: status, Checks: checks})
}
