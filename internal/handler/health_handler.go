package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/database"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/response"
)

// HealthHandler reports service and dependency health
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Liveness always succeeds while the process serves requests
// GET /health
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
}

// Readiness checks the backing stores
// GET /ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.db != nil {
		start := time.Now()
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = gin.H{"status": "down", "error": err.Error()}
			healthy = false
		} else {
			checks["postgres"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
		}
	}

	if h.redis != nil {
		start := time.Now()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = gin.H{"status": "down", "error": err.Error()}
			healthy = false
		} else {
			checks["redis"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable(""))
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ready", "checks": checks}))
}
