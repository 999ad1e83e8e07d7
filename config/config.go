// config/config.go
package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting read from the environment
type Config struct {
	Port string
	Env  string

	MongoURI string
	DBName   string

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MailProvider  string
	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPassword string
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	GoogleClientID            string
	GoogleVerifier            string
	FirebaseProjectID         string
	FirebaseCredentialsBase64 string
	GoogleCredentialsFile     string

	ImageHost     string
	CloudinaryURL string
	GCSBucket     string

	GeminiAPIKey string
	GeminiModel  string

	CORSAllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_NAME", "noteshive")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MAIL_PROVIDER", "smtp")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GOOGLE_VERIFIER", "idtoken")
	v.SetDefault("IMAGE_HOST", "cloudinary")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-pro")

	mongoURI := v.GetString("MONGO_URI")
	if mongoURI == "" {
		mongoURI = v.GetString("MONGODB_URI")
	}

	cfg := &Config{
		Port:                      v.GetString("PORT"),
		Env:                       v.GetString("ENV"),
		MongoURI:                  mongoURI,
		DBName:                    v.GetString("DB_NAME"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		RedisAddr:                 v.GetString("REDIS_ADDR"),
		RedisPassword:             v.GetString("REDIS_PASSWORD"),
		RedisDB:                   v.GetInt("REDIS_DB"),
		MailProvider:              strings.ToLower(v.GetString("MAIL_PROVIDER")),
		SMTPHost:                  v.GetString("SMTP_HOST"),
		SMTPPort:                  v.GetInt("SMTP_PORT"),
		EmailUser:                 v.GetString("EMAIL_USER"),
		EmailPassword:             v.GetString("EMAIL_PASSWORD"),
		MailgunDomain:             v.GetString("MAILGUN_DOMAIN"),
		MailgunAPIKey:             v.GetString("MAILGUN_API_KEY"),
		MailgunSender:             v.GetString("MAILGUN_SENDER"),
		GoogleClientID:            v.GetString("GOOGLE_CLIENT_ID"),
		GoogleVerifier:            strings.ToLower(v.GetString("GOOGLE_VERIFIER")),
		FirebaseProjectID:         v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsBase64: v.GetString("FIREBASE_CREDENTIALS_BASE64"),
		GoogleCredentialsFile:     v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		ImageHost:                 strings.ToLower(v.GetString("IMAGE_HOST")),
		CloudinaryURL:             v.GetString("CLOUDINARY_URL"),
		GCSBucket:                 v.GetString("GCS_BUCKET"),
		GeminiAPIKey:              v.GetString("GEMINI_API_KEY"),
		GeminiModel:               v.GetString("GEMINI_MODEL"),
		CORSAllowedOrigins:        splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
	if cfg.MailgunSender == "" {
		cfg.MailgunSender = cfg.EmailUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is required"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI or MONGODB_URI environment variable is required"))
	}
	if c.GoogleClientID == "" && c.GoogleVerifier != "firebase" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID environment variable is required"))
	}
	switch c.MailProvider {
	case "smtp", "mailgun":
	default:
		errs = append(errs, errors.New("MAIL_PROVIDER must be smtp or mailgun"))
	}
	switch c.GoogleVerifier {
	case "idtoken", "jwks", "firebase":
	default:
		errs = append(errs, errors.New("GOOGLE_VERIFIER must be idtoken, jwks or firebase"))
	}
	switch c.ImageHost {
	case "cloudinary", "gcs":
	default:
		errs = append(errs, errors.New("IMAGE_HOST must be cloudinary or gcs"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the server runs in a dev environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
