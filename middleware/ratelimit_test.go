// File: middleware/ratelimit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimitedRouter(l *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/patients", RateLimit(l), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func post(router *gin.Engine, remoteAddr string) int {
	req, _ := http.NewRequest(http.MethodPost, "/api/patients", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	l := NewRateLimiter(RateLimitSettings{PerSec: 1, Burst: 2})
	frozen := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return frozen }
	router := newLimitedRouter(l)

	assert.Equal(t, http.StatusCreated, post(router, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusCreated, post(router, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.1:1002"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusCreated, post(router, "10.0.0.2:1000"))

	frozen = frozen.Add(time.Second)
	assert.Equal(t, http.StatusCreated, post(router, "10.0.0.1:1003"))
}

func TestNewRateLimiter_MinimumBurst(t *testing.T) {
	l := NewRateLimiter(RateLimitSettings{PerSec: 5})
	assert.Equal(t, 1, l.Settings.Burst)
	assert.Same(t, l.Limiter("a"), l.Limiter("a"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	l := NewRateLimiter(RateLimitSettings{PerSec: rate.Every(time.Hour), Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, l.Allow(ip))
	}
	assert.Equal(t, 3, l.Len())

	now = now.Add(30 * time.Second)
	assert.False(t, l.Allow("10.0.0.3"), "bucket still drained")

	now = now.Add(45 * time.Second)
	assert.True(t, l.Allow("10.0.0.4"))
	assert.Equal(t, 2, l.Len(), "clients idle past the TTL are dropped")
	assert.False(t, l.Allow("10.0.0.3"), "recently seen client keeps its drained bucket")
}
