package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK from base64 credentials or
// a credentials file.
func InitFirebase(ctx context.Context, cfg *Config, logger *logrus.Logger) (*firebase.App, error) {
	var opt option.ClientOption
	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		logger.Info("using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case cfg.GoogleCredentialsFile != "":
		logger.WithField("file", cfg.GoogleCredentialsFile).Info("using Firebase credentials file")
		opt = option.WithCredentialsFile(cfg.GoogleCredentialsFile)
	default:
		return nil, fmt.Errorf("firebase credentials missing: set FIREBASE_CREDENTIALS_BASE64 or GOOGLE_APPLICATION_CREDENTIALS")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}
