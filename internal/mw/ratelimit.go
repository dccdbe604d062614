package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiters of clients that stay quiet this long are dropped.
const (
	limiterIdleTTL      = 10 * time.Minute
	limiterCleanupEvery = time.Minute
)

// IPRateLimiter keeps one token bucket per client IP. Each hit pushes the
// bucket's expiry forward, so only idle clients are evicted.
type IPRateLimiter struct {
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewIPRateLimiter creates a limiter whose per-IP buckets expire after idle
// without traffic.
func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration) *IPRateLimiter {
	cleanup := limiterCleanupEvery
	if idle < cleanup {
		cleanup = idle
	}
	return &IPRateLimiter{
		limiters: cache.New(idle, cleanup),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the bucket for ip, creating it on first sight.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	if v, found := i.limiters.Get(ip); found {
		i.limiters.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(i.r, i.b)
	if err := i.limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// A concurrent request for the same IP stored its bucket first.
		if v, found := i.limiters.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// Len reports how many client buckets are currently held, expired ones included
// until the next cleanup.
func (i *IPRateLimiter) Len() int {
	return i.limiters.ItemCount()
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return RateLimiterWith(NewIPRateLimiter(r, b, limiterIdleTTL))
}

// RateLimiterWith is RateLimiter over an existing limiter.
func RateLimiterWith(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
