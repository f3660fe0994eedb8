// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit is a fixed one-minute window per client IP backed by Redis.
// When Redis is unreachable requests are let through.
func RateLimit(limit int, redisClient *redis.Client, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		current, err := redisClient.Incr(ctx, key).Result()
		if err == nil && current == 1 {
			err = redisClient.Expire(ctx, key, time.Minute).Err()
		}
		var ttl time.Duration
		if err == nil {
			ttl, err = redisClient.TTL(ctx, key).Result()
		}
		if err != nil {
			logger.WithError(err).Warn("⚠️ Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if ttl < 0 {
			ttl = time.Minute
		}

		remaining := max(limit-int(current), 0)
		reset := time.Now().Add(ttl)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if int(current) > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Rate limit exceeded",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
