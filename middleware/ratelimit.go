// Package middleware provides request filters for the application.
// File: middleware/ratelimit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused client bucket is kept.
const DefaultIdleTTL = 10 * time.Minute

// RateLimitSettings configures a token bucket per client IP.
type RateLimitSettings struct {
	PerSec rate.Limit
	Burst  int
	// IdleTTL evicts buckets unused for this long. Zero means DefaultIdleTTL.
	IdleTTL time.Duration
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one limiter per key.
type RateLimiter struct {
	Settings RateLimitSettings

	mu        sync.Mutex
	limiters  map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter set with the given settings.
func NewRateLimiter(settings RateLimitSettings) *RateLimiter {
	if settings.Burst < 1 {
		settings.Burst = 1
	}
	if settings.IdleTTL <= 0 {
		settings.IdleTTL = DefaultIdleTTL
	}
	return &RateLimiter{
		Settings: settings,
		limiters: make(map[string]*clientBucket),
		now:      time.Now,
	}
}

// Limiter returns the bucket for key, creating it on first use.
func (l *RateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucketLocked(key, l.now()).limiter
}

func (l *RateLimiter) bucketLocked(key string, now time.Time) *clientBucket {
	l.sweepLocked(now)
	b, ok := l.limiters[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.Settings.PerSec, l.Settings.Burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	return b
}

// sweepLocked drops idle buckets at most once per IdleTTL. An evicted
// bucket had refilled long ago, so a returning client starts full either way.
func (l *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.Settings.IdleTTL {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) >= l.Settings.IdleTTL {
			delete(l.limiters, key)
		}
	}
}

// Len reports how many client buckets are held.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	return l.bucketLocked(key, now).limiter.AllowN(now, 1)
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			logger.Warn.Printf("[RateLimit] %s %s from %s exceeded %.2f/s", c.Request.Method, c.FullPath(), ip, float64(l.Settings.PerSec))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again shortly"})
			return
		}
		c.Next()
	}
}
