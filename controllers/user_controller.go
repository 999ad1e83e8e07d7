package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/middleware"
	"github.com/HSouheill/noteshive_backend/models"
)

type ProfileManager interface {
	UpdatePicture(ctx context.Context, userID primitive.ObjectID, filename string, size int64, r io.Reader) (string, error)
	GenerateContent(ctx context.Context, content string) (string, error)
}

// UserController handles the signed-in user's profile and AI drafting
type UserController struct {
	profiles ProfileManager
}

func NewUserController(profiles ProfileManager) *UserController {
	return &UserController{profiles: profiles}
}

// GetProfile returns the caller's account without secrets
func (uc *UserController) GetProfile(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// UploadProfilePicture handles the multipart "image" field
func (uc *UserController) UploadProfilePicture(c echo.Context) error {
	user := middleware.CurrentUser(c)
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No image file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read image file",
		})
	}
	defer src.Close()

	url, err := uc.profiles.UpdatePicture(c.Request().Context(), user.ID, file.Filename, file.Size, src)
	if err != nil {
		return respondError(c, err, "Failed to upload profile picture")
	}
	return c.JSON(http.StatusOK, models.ProfilePictureResponse{
		Message:        "Profile picture updated successfully",
		ProfilePicture: url,
	})
}

// GenerateContent drafts note content with Gemini
func (uc *UserController) GenerateContent(c echo.Context) error {
	var req models.GenerateContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	text, err := uc.profiles.GenerateContent(c.Request().Context(), req.Content)
	if err != nil {
		return respondError(c, err, "Failed to generate content")
	}
	return c.JSON(http.StatusOK, models.GenerateContentResponse{
		Message:          "Content generated successfully",
		GeneratedContent: text,
	})
}
