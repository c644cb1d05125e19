package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hariombangali/rentora-backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func rateLimitTestConfig(softBucket, hardBucket int) *config.Config {
	return &config.Config{
		RateLimitSoftBucketSize: softBucket,
		RateLimitSoftRefillRate: 0,
		RateLimitHardBucketSize: hardBucket,
		RateLimitHardRefillRate: 0,
	}
}

func rateLimitTestRouter(rm *RateLimiterMiddleware, authenticated bool) *gin.Engine {
	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(ContextKeyUserID, "test-user")
			c.Next()
		})
	}
	r.Use(rm.Limit())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func hitPing(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_SoftLimitThrottlesAnonymous(t *testing.T) {
	rm := NewRateLimiterMiddleware(rateLimitTestConfig(2, 100))
	r := rateLimitTestRouter(rm, false)

	assert.Equal(t, http.StatusOK, hitPing(r))
	assert.Equal(t, http.StatusOK, hitPing(r))
	assert.Equal(t, http.StatusTooManyRequests, hitPing(r))
}

func TestRateLimiter_AuthenticatedSkipsSoftLimit(t *testing.T) {
	rm := NewRateLimiterMiddleware(rateLimitTestConfig(1, 100))
	r := rateLimitTestRouter(rm, true)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hitPing(r))
	}
}

func TestRateLimiter_HardLimitAppliesToEveryone(t *testing.T) {
	rm := NewRateLimiterMiddleware(rateLimitTestConfig(100, 3))
	r := rateLimitTestRouter(rm, true)

	assert.Equal(t, http.StatusOK, hitPing(r))
	assert.Equal(t, http.StatusOK, hitPing(r))
	assert.Equal(t, http.StatusOK, hitPing(r))
	assert.Equal(t, http.StatusTooManyRequests, hitPing(r))
}
