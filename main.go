package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/noteshive_backend/config"
	"github.com/HSouheill/noteshive_backend/controllers"
	"github.com/HSouheill/noteshive_backend/metrics"
	"github.com/HSouheill/noteshive_backend/middleware"
	"github.com/HSouheill/noteshive_backend/repositories"
	"github.com/HSouheill/noteshive_backend/routes"
	"github.com/HSouheill/noteshive_backend/services"
	"github.com/HSouheill/noteshive_backend/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := config.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	client, db, err := config.ConnectDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	// Redis is optional; without it OTP attempts are not limited
	rdb := config.ConnectRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	verifier, err := newIdentityVerifier(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up Google sign-in")
	}
	mailer := newMailer(cfg, logger)
	images := newImageHost(ctx, cfg, logger)

	var generator services.ContentGenerator
	if gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		logger.WithError(err).Warn("AI content generation disabled")
	} else {
		defer gemini.Close()
		generator = gemini
	}

	m := metrics.New()

	// Create WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	noteRepo := repositories.NewNoteRepository(db)

	signer := middleware.NewTokenSigner(cfg.JWTSecret, logger)

	accounts := services.NewAccountService(userRepo, signer, mailer, verifier, logger,
		services.WithAttemptLimiter(services.NewAttemptLimiter(rdb)),
		services.WithAuthMetrics(m),
	)
	notes := services.NewNoteService(noteRepo, wsHub, logger)
	profiles := services.NewProfileService(userRepo, images, generator, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = middleware.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.AccessLog(nil))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		ImageHosts:   []string{"https://res.cloudinary.com", "https://storage.googleapis.com", "https://lh3.googleusercontent.com"},
		ConnectHosts: []string{"wss:"},
	}))
	e.Use(m.Middleware())
	e.Use(httpsRedirect())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "NotesHive Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.GET("/metrics", m.Handler())

	routes.SetupRoutes(e, routes.Router{
		Auth:          controllers.NewAuthController(accounts),
		Users:         controllers.NewUserController(profiles),
		Notes:         controllers.NewNoteController(notes),
		Hub:           wsHub,
		Protect:       []echo.MiddlewareFunc{signer.JWT(), middleware.RequireAccount(userRepo, logger)},
		SocketProtect: []echo.MiddlewareFunc{signer.SocketJWT(), middleware.RequireAccount(userRepo, logger)},
	})

	// Start server
	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}

func newIdentityVerifier(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (services.IdentityVerifier, error) {
	switch cfg.GoogleVerifier {
	case "jwks":
		return services.NewJWKSVerifier(cfg.GoogleClientID), nil
	case "firebase":
		app, err := config.InitFirebase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return services.NewFirebaseVerifier(app), nil
	default:
		return services.NewIDTokenVerifier(ctx, cfg.GoogleClientID)
	}
}

func newMailer(cfg *config.Config, logger *logrus.Logger) services.OTPMailer {
	if cfg.MailProvider == "mailgun" {
		return services.NewMailgunMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, logger)
	}
	return services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, logger)
}

// newImageHost returns nil when the host cannot be configured; uploads then fail with 500
func newImageHost(ctx context.Context, cfg *config.Config, logger *logrus.Logger) services.ImageHost {
	switch cfg.ImageHost {
	case "gcs":
		gcs, err := services.NewGCSClient(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			logger.WithError(err).Warn("profile picture uploads disabled")
			return nil
		}
		return services.NewGCSHost(gcs, cfg.GCSBucket)
	default:
		host, err := services.NewCloudinaryHost(cfg.CloudinaryURL)
		if err != nil {
			logger.WithError(err).Warn("profile picture uploads disabled")
			return nil
		}
		return host
	}
}
