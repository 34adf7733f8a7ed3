package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shoplite/auth-service/internal/utils/metrics"
)

// MetricsMiddleware records request counts and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.RequestsTotal.Inc()
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(duration)
	}
}
