package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(requests int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(requests, window, "Too many requests"))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string) int {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.RemoteAddr = remoteAddr
	router.ServeHTTP(recorder, request)
	return recorder.Code
}

func TestRateLimit_AllowsWithinQuota(t *testing.T) {
	router := rateLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1:1234"))
	}
}

func TestRateLimit_RejectsOverQuota(t *testing.T) {
	router := rateLimitedRouter(2, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1:1234"))
}

func TestRateLimit_QuotaIsPerIP(t *testing.T) {
	router := rateLimitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1:1234"))
	// A different client still has its quota.
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2:1234"))
}
