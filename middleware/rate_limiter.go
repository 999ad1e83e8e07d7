// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	stop           chan struct{}
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20}, // 10 requests per second
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// OTP issuance sends mail, keep it slow
			"/api/auth/signup":         {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/login":          {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/resend-otp":     {limit: rate.Every(2 * time.Second), burst: 3},
			"/api/auth/verify-otp":     {limit: rate.Every(500 * time.Millisecond), burst: 5},
			"/api/auth/google":         {limit: rate.Every(500 * time.Millisecond), burst: 5},
			"/api/ai/generate-content": {limit: rate.Every(time.Second), burst: 5},
		},
		stop: make(chan struct{}),
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

// SetEndpointLimit overrides the limit for one route path.
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

// Stop ends the cleanup goroutine.
func (r *RateLimiter) Stop() {
	close(r.stop)
}

func (r *RateLimiter) cleanupBlockedIPs() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.mu.Lock()
			for key, blockUntil := range r.blockedIPs {
				if now.After(blockUntil) {
					delete(r.blockedIPs, key)
					// Also remove the limiter to reset its state
					delete(r.ips, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			r.mu.Lock()
			limit, exists := r.endpointLimits[path]
			if !exists {
				limit = r.defaultLimit
				path = ""
			}
			// limiters are tracked per IP and per limited endpoint
			key := c.RealIP() + "|" + path

			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}

			limiter, ok := r.ips[key]
			if !ok {
				limiter = rate.NewLimiter(limit.limit, limit.burst)
				r.ips[key] = limiter
			}

			if !limiter.Allow() {
				blockUntil := time.Now().Add(r.blockDuration)
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, map[string]string{
		"message":    "Too many requests",
		"retryAfter": retryAfter.Format(time.RFC3339),
	})
}
