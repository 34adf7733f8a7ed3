package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/domain/service"
)

// Limiter is a fixed-window counter backed by Redis. INCR + first-hit EXPIRE
// keeps the window check to a single round trip per attempt.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
}

func NewLimiter(client *redis.Client, logger *zap.Logger) *Limiter {
	return &Limiter{client: client, logger: logger.Named("rate_limiter")}
}

func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("rate:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("Failed to increment rate limit counter", zap.Error(err), zap.String("key", key))
		// On Redis failure, allow the request rather than lock users out.
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logger.Error("Failed to set rate limit window", zap.Error(err), zap.String("key", key))
		}
	}
	if count > int64(limit) {
		l.logger.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
		)
		return false, nil
	}
	return true, nil
}

var _ service.AttemptLimiter = (*Limiter)(nil)
