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

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/other", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(router, nil).Code)
	assert.Equal(t, http.StatusOK, doGet(router, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, nil).Code)

	// other routes keep their own bucket
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// a forwarded-for header does not reset the bucket
	w = doGet(router, map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
