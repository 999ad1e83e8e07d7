// Package metrics exposes Prometheus counters for the HTTP surface and the
// OTP lifecycle.
package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	otpIssued    *prometheus.CounterVec
	otpVerified  *prometheus.CounterVec
	googleLogins prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noteshive",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noteshive",
			Name:      "otp_issued_total",
			Help:      "OTP codes issued by flow.",
		}, []string{"flow"}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noteshive",
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by outcome.",
		}, []string{"outcome"}),
		googleLogins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "noteshive",
			Name:      "google_signins_total",
			Help:      "Successful Google sign-ins.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.otpIssued,
		m.otpVerified,
		m.googleLogins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware counts every request once its handler returns.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.requests.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) OTPIssued(flow string) {
	m.otpIssued.WithLabelValues(flow).Inc()
}

func (m *Metrics) OTPVerification(outcome string) {
	m.otpVerified.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GoogleSignIn() {
	m.googleLogins.Inc()
}
