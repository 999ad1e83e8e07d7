package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/middleware"
	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/services"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) UpdatePicture(ctx context.Context, userID primitive.ObjectID, filename string, size int64, r io.Reader) (string, error) {
	args := m.Called(userID, filename, size)
	return args.String(0), args.Error(1)
}

func (m *mockProfiles) GenerateContent(ctx context.Context, content string) (string, error) {
	args := m.Called(content)
	return args.String(0), args.Error(1)
}

func TestGetProfileHidesSecrets(t *testing.T) {
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        "alice@example.com",
		Name:         "Alice",
		SessionToken: "secret-token",
		OTP:          &models.OTP{CodeHash: "hash"},
	}
	rec := serve(t, user, http.MethodGet, "", NewUserController(new(mockProfiles)).GetProfile)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-token")
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.Equal(t, "Alice", decode(t, rec)["data"].(map[string]interface{})["name"])
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/users/profile-picture", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadProfilePicture(t *testing.T) {
	profiles := new(mockProfiles)
	uc := NewUserController(profiles)
	user := &models.User{ID: primitive.NewObjectID()}
	profiles.On("UpdatePicture", user.ID, "me.png", int64(4)).Return("https://img/x.png", nil).Once()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "image", "me.png", []byte("data")), rec)
	middleware.SetCurrentUser(c, user)
	require.NoError(t, uc.UploadProfilePicture(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"message":        "Profile picture updated successfully",
		"profilePicture": "https://img/x.png",
	}, decode(t, rec))

	rec = httptest.NewRecorder()
	c = e.NewContext(multipartRequest(t, "", "", nil), rec)
	middleware.SetCurrentUser(c, user)
	require.NoError(t, uc.UploadProfilePicture(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No image file provided", decode(t, rec)["message"])
	profiles.AssertExpectations(t)
}

func TestGenerateContentHandler(t *testing.T) {
	profiles := new(mockProfiles)
	uc := NewUserController(profiles)
	user := &models.User{ID: primitive.NewObjectID()}
	profiles.On("GenerateContent", "trip").Return("# Trip", nil)
	profiles.On("GenerateContent", "").Return("", serviceErr(services.ErrValidation, "Content is required for generation"))

	rec := serve(t, user, http.MethodPost, `{"content":"trip"}`, uc.GenerateContent)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"message":          "Content generated successfully",
		"generatedContent": "# Trip",
	}, decode(t, rec))

	rec = serve(t, user, http.MethodPost, `{}`, uc.GenerateContent)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Content is required for generation", decode(t, rec)["message"])
}
