// middleware/security_headers.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type SecurityConfig struct {
	// ImageHosts are extra origins allowed in img-src (CDN for profile pictures)
	ImageHosts []string
	// ConnectHosts are extra origins allowed in connect-src
	ConnectHosts []string
}

func SecurityHeaders(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Del("Server")
			h.Del("X-Powered-By")
			return next(c)
		}
	}
}

func buildCSP(config SecurityConfig) string {
	img := append([]string{"'self'", "data:"}, config.ImageHosts...)
	connect := append([]string{"'self'"}, config.ConnectHosts...)
	return strings.Join([]string{
		"default-src 'self'",
		"img-src " + strings.Join(img, " "),
		"connect-src " + strings.Join(connect, " "),
		"frame-ancestors 'none'",
	}, "; ")
}
