package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/config"
	"github.com/shoplite/auth-service/internal/domain/service"
)

// RateLimitMiddleware applies a fixed-window limit keyed by client IP. Per-user
// limits on code issue and verification live in the services themselves.
func RateLimitMiddleware(limiter service.AttemptLimiter, rule config.RateLimitRule, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rule.Enabled {
			c.Next()
			return
		}

		key := "http:" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			// Limiter backend trouble is logged by the limiter itself; the
			// request proceeds rather than locking everyone out.
			logger.Warn("Rate limiter unavailable", zap.Error(err), zap.String("key", key))
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
				"code":  "rate_limited",
			})
			return
		}

		c.Next()
	}
}
