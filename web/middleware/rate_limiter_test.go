package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(2, 0)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Equal(t, 0, tb.Remaining())
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewClientRateLimiter(RateLimiterConfig{RequestsPerMinute: 1, BurstSize: 2}, zap.NewNop())
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	blocked := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, "2", blocked.Header().Get("X-RateLimit-Limit"))

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	limiter := NewClientRateLimiter(RateLimiterConfig{RequestsPerMinute: 10, BurstSize: 1, IdleTimeout: time.Minute}, zap.NewNop())
	defer limiter.Stop()

	limiter.Allow("a")
	limiter.cleanup(time.Now())
	assert.Len(t, limiter.buckets, 1)

	limiter.cleanup(time.Now().Add(2 * time.Minute))
	assert.Empty(t, limiter.buckets)
}
