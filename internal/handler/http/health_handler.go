package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redisClient "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	dbPool *pgxpool.Pool
	redis  *redisClient.Client
	logger *zap.Logger
}

func NewHealthHandler(dbPool *pgxpool.Pool, redis *redisClient.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		dbPool: dbPool,
		redis:  redis,
		logger: logger.Named("health_handler"),
	}
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness checks the backing stores. Redis is optional at runtime so only
// the database gates readiness.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	if h.dbPool != nil {
		if err := h.dbPool.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed on database", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}

	redisStatus := "ok"
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warn("Readiness check degraded on redis", zap.Error(err))
			redisStatus = "down"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redisStatus})
}
