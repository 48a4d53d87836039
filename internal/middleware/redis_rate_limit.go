package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisRateLimitConfig holds configuration for the rate limiter
type RedisRateLimitConfig struct {
	Enabled            bool
	RequestsPerMinute  int
	ClientIPHeaderName string
}

// WindowCounter counts requests per key within a fixed window
type WindowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// The key expires with its window, so counters never outlive a minute.
var incrementScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RedisCounter is a WindowCounter shared by every server instance
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a counter backed by Redis
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment bumps the counter for key and returns the new count
func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrementScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64()
}

// RedisRateLimit creates middleware for rate limiting requests with a shared counter.
// Requests are let through when the counter is unavailable.
func RedisRateLimit(counter WindowCounter, config RedisRateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled {
			c.Next()
			return
		}

		clientID := clientKey(c, config.ClientIPHeaderName)
		now := time.Now()
		windowStart := now.Unix() / 60
		resetTime := (windowStart + 1) * 60
		key := fmt.Sprintf("ratelimit:%s:%d", clientID, windowStart)

		count, err := counter.Increment(c.Request.Context(), key, time.Minute)
		if err != nil {
			logger.Error("Rate limit check failed", zap.Error(err), zap.String("client", clientID))
			c.Next() // Continue on error
			return
		}

		remaining := config.RequestsPerMinute - int(count)
		if remaining < 0 {
			remaining = 0
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if count > int64(config.RequestsPerMinute) {
			c.Header("Retry-After", strconv.FormatInt(resetTime-now.Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  http.StatusTooManyRequests,
				"message": "Rate limit exceeded. Try again later.",
			})
			return
		}

		c.Next()
	}
}
