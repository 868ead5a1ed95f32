package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(rps float64, burst int) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(RateLimitMiddleware(rps, burst, logger))
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	router := setupRateLimitedRouter(1, 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_RejectsBeyondBurst(t *testing.T) {
	router := setupRateLimitedRouter(1, 1)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_IndependentPerAddress(t *testing.T) {
	router := setupRateLimitedRouter(1, 1)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/test", nil)
	req.RemoteAddr = "10.0.0.4:1234"
	router.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}
