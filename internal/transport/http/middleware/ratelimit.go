package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/metrics"
)

// Counter increments a rate-limit bucket and reports the resulting count.
// The expiry is applied only when the bucket is created.
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, expire time.Duration) (int64, error)
}

// RateLimit enforces a fixed-window quota per caller and route. The key is
// the authenticated user's ID when present, the client IP otherwise. Redis
// outages fail open so a cache incident never takes down the API.
func RateLimit(counter Counter, logger *slog.Logger, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if user, ok := CurrentUser(c); ok {
			subject = user.ID
		}
		key := fmt.Sprintf("ratelimit:%s:%s:%s", c.Request.Method, c.FullPath(), subject)

		count, err := counter.IncrWithExpire(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn("rate limit counter unavailable, failing open", "error", err)
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(window.Seconds()), 10))

		if count > limit {
			metrics.RateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}
