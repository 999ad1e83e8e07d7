package services

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/repositories"
	"github.com/HSouheill/noteshive_backend/utils"
)

type PictureStore interface {
	UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, pictureURL string) error
}

// ProfileService handles profile pictures and AI drafting for signed-in users.
type ProfileService struct {
	users     PictureStore
	images    ImageHost
	generator ContentGenerator
	logger    *logrus.Entry
}

func NewProfileService(users PictureStore, images ImageHost, generator ContentGenerator, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		users:     users,
		images:    images,
		generator: generator,
		logger:    logger.WithField("component", "profile"),
	}
}

// UpdatePicture validates, crops and uploads an image, then stores its URL.
func (s *ProfileService) UpdatePicture(ctx context.Context, userID primitive.ObjectID, filename string, size int64, r io.Reader) (string, error) {
	if err := utils.ValidateImageFile(filename, size); err != nil {
		return "", newError(ErrValidation, err.Error(), nil)
	}
	log := s.logger.WithField("userId", userID.Hex())

	img, err := utils.PrepareProfileImage(io.LimitReader(r, utils.MaxImageSize+1), filename)
	if err != nil {
		log.WithError(err).Warn("rejected profile picture")
		return "", newError(ErrValidation, "Invalid image file", err)
	}

	if s.images == nil {
		return "", newError(ErrDependency, "Image upload is not configured", nil)
	}
	url, err := s.images.UploadProfileImage(ctx, userID.Hex(), img)
	if err != nil {
		log.WithError(err).Error("failed to upload profile picture")
		return "", newError(ErrDependency, "Failed to upload profile picture", err)
	}

	if err := s.users.UpdateProfilePicture(ctx, userID, url); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", newError(ErrNotFound, "User not found", nil)
		}
		log.WithError(err).Error("failed to store profile picture")
		return "", newError(ErrDependency, "Failed to upload profile picture", err)
	}
	log.Info("profile picture updated")
	return url, nil
}

// GenerateContent drafts note content with the configured model.
func (s *ProfileService) GenerateContent(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", newError(ErrValidation, "Content is required for generation", nil)
	}
	if s.generator == nil {
		return "", newError(ErrDependency, "Content generation is not configured", nil)
	}
	text, err := s.generator.GenerateNoteContent(ctx, content)
	if err != nil {
		s.logger.WithError(err).Error("content generation failed")
		if errors.Is(err, ErrNoContent) {
			return "", newError(ErrDependency, ErrNoContent.Error(), err)
		}
		return "", newError(ErrDependency, "Failed to generate content", err)
	}
	return text, nil
}
