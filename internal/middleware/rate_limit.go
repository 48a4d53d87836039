package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client. Buckets idle for longer than
// limiterIdleTTL are dropped.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burstSize,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow checks if a request is allowed based on rate limits
func (r *RateLimiter) Allow(clientID string) bool {
	r.mu.Lock()
	now := r.now()
	if now.Sub(r.lastSweep) >= limiterSweepInterval {
		r.sweep(now)
	}

	client, exists := r.clients[clientID]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[clientID] = client
	}
	client.lastSeen = now
	r.mu.Unlock()

	return client.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Callers hold r.mu.
func (r *RateLimiter) sweep(now time.Time) {
	for id, client := range r.clients {
		if now.Sub(client.lastSeen) > limiterIdleTTL {
			delete(r.clients, id)
		}
	}
	r.lastSweep = now
}

// RateLimit creates in-memory rate limiting middleware, used when Redis is not configured
func RateLimit(requestsPerMinute, burstSize int, clientIPHeaderName string) gin.HandlerFunc {
	limiter := NewRateLimiter(requestsPerMinute, burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow(clientKey(c, clientIPHeaderName)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  http.StatusTooManyRequests,
				"message": "Rate limit exceeded. Try again later.",
			})
			return
		}

		c.Next()
	}
}

// clientKey identifies the caller by authenticated subject, then the
// configured proxy header, then the connection IP.
func clientKey(c *gin.Context, headerName string) string {
	if sub := c.GetString(string(subjectKey)); sub != "" {
		return "sub:" + sub
	}
	if headerName != "" {
		if headerIP := c.GetHeader(headerName); headerIP != "" {
			return headerIP
		}
	}
	return c.ClientIP()
}
