package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	defer limiter.Stop()
	limiter.SetEndpointLimit("/api/auth/login", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/api/auth/login", ok)
	e.GET("/api/notes", ok)

	do := func(method, path, ip string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/auth/login", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/auth/login", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/api/auth/login", "10.0.0.1"))
	// still blocked on the limited endpoint
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/api/auth/login", "10.0.0.1"))

	// other endpoints and other clients are unaffected
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/notes", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/auth/login", "10.0.0.2"))
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(SecurityConfig{ImageHosts: []string{"https://res.cloudinary.com"}}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data: https://res.cloudinary.com")
}
