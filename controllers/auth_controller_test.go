package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/services"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) IssueOTPForSignup(ctx context.Context, name, email, dob string) error {
	return m.Called(name, email, dob).Error(0)
}

func (m *mockAccounts) IssueOTPForLogin(ctx context.Context, email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *mockAccounts) ResendOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *mockAccounts) VerifyOTP(ctx context.Context, email, code string) (*services.VerifyResult, error) {
	args := m.Called(email, code)
	res, _ := args.Get(0).(*services.VerifyResult)
	return res, args.Error(1)
}

func (m *mockAccounts) GoogleSignIn(ctx context.Context, idToken string, data *models.GoogleUserData) (*services.GoogleSignInResult, error) {
	args := m.Called(idToken, data)
	res, _ := args.Get(0).(*services.GoogleSignInResult)
	return res, args.Error(1)
}

// serviceErr builds an error the way the service layer does.
func serviceErr(kind error, msg string) error {
	return &services.Error{Kind: kind, Message: msg}
}

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignup(t *testing.T) {
	accounts := new(mockAccounts)
	ac := NewAuthController(accounts)
	accounts.On("IssueOTPForSignup", "Alice", "alice@example.com", "1990-01-01").Return(nil).Once()

	rec := postJSON(t, ac.Signup, `{"name":"Alice","email":"alice@example.com","dob":"1990-01-01"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]interface{}{"message": "OTP sent to email"}, decode(t, rec))
	accounts.AssertExpectations(t)
}

func TestAuthErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", serviceErr(services.ErrValidation, "Invalid email"), http.StatusBadRequest},
		{"conflict", serviceErr(services.ErrConflict, "Email already registered"), http.StatusBadRequest},
		{"delivery", serviceErr(services.ErrDelivery, "Failed to send OTP email"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(mockAccounts)
			accounts.On("IssueOTPForSignup", mock.Anything, mock.Anything, mock.Anything).Return(tt.err)
			rec := postJSON(t, NewAuthController(accounts).Signup, `{"name":"A","email":"x","dob":"d"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, services.Message(tt.err, "Signup failed"), decode(t, rec)["error"])
		})
	}
}

func TestLoginAndResend(t *testing.T) {
	accounts := new(mockAccounts)
	ac := NewAuthController(accounts)
	accounts.On("IssueOTPForLogin", "Alice@Example.com").Return("alice@example.com", nil)
	accounts.On("ResendOTP", "ghost@example.com").Return("", serviceErr(services.ErrNotFound, "User not found"))

	rec := postJSON(t, ac.Login, `{"email":"Alice@Example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"message": "OTP sent to your email", "email": "alice@example.com"}, decode(t, rec))

	rec = postJSON(t, ac.ResendOTP, `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["error"])
}

func TestVerifyOTPMessages(t *testing.T) {
	accounts := new(mockAccounts)
	ac := NewAuthController(accounts)
	profile := models.UserProfile{Email: "alice@example.com", Name: "Alice", DateOfBirth: "1990-01-01"}
	accounts.On("VerifyOTP", "alice@example.com", "123456").
		Return(&services.VerifyResult{Token: "tok", Profile: profile, Created: true}, nil).Once()
	accounts.On("VerifyOTP", "alice@example.com", "654321").
		Return(&services.VerifyResult{Token: "tok2", Profile: profile}, nil).Once()
	accounts.On("VerifyOTP", "alice@example.com", "000000").
		Return(nil, serviceErr(services.ErrTooManyAttempts, "Too many OTP attempts. Please try again later.")).Once()

	rec := postJSON(t, ac.VerifyOTP, `{"email":"alice@example.com","otp":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Account created successfully", body["message"])
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, map[string]interface{}{"email": "alice@example.com", "name": "Alice", "dob": "1990-01-01"}, body["user"])

	rec = postJSON(t, ac.VerifyOTP, `{"email":"alice@example.com","otp":"654321"}`)
	assert.Equal(t, "Login successful", decode(t, rec)["message"])

	rec = postJSON(t, ac.VerifyOTP, `{"email":"alice@example.com","otp":"000000"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGoogleLogin(t *testing.T) {
	accounts := new(mockAccounts)
	ac := NewAuthController(accounts)
	accounts.On("GoogleSignIn", "id-token", &models.GoogleUserData{Name: "Bob"}).
		Return(&services.GoogleSignInResult{Token: "tok", User: &models.User{Email: "bob@example.com", Name: "Bob"}}, nil)
	accounts.On("GoogleSignIn", "bad", (*models.GoogleUserData)(nil)).
		Return(nil, serviceErr(services.ErrAuthFailed, "Google authentication failed"))

	rec := postJSON(t, ac.GoogleLogin, `{"idToken":"id-token","userData":{"name":"Bob"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"token": "tok",
		"user":  map[string]interface{}{"email": "bob@example.com", "name": "Bob"},
	}, decode(t, rec))

	rec = postJSON(t, ac.GoogleLogin, `{"idToken":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Google authentication failed", decode(t, rec)["error"])
}

func TestMalformedBody(t *testing.T) {
	rec := postJSON(t, NewAuthController(new(mockAccounts)).Login, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["error"])
}
