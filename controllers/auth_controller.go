package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/services"
)

// AccountFlows is the account lifecycle used by the auth endpoints
type AccountFlows interface {
	IssueOTPForSignup(ctx context.Context, name, email, dob string) error
	IssueOTPForLogin(ctx context.Context, email string) (string, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (*services.VerifyResult, error)
	GoogleSignIn(ctx context.Context, idToken string, data *models.GoogleUserData) (*services.GoogleSignInResult, error)
}

// AuthController contains authentication logic
type AuthController struct {
	accounts AccountFlows
}

// NewAuthController creates a new auth controller
func NewAuthController(accounts AccountFlows) *AuthController {
	return &AuthController{accounts: accounts}
}

// Signup stages a new account and emails its first OTP
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	if err := ac.accounts.IssueOTPForSignup(c.Request().Context(), req.Name, req.Email, req.DateOfBirth); err != nil {
		return authError(c, err, "Signup failed")
	}
	return c.JSON(http.StatusCreated, models.OTPSentResponse{Message: "OTP sent to email"})
}

// Login emails an OTP to an existing account
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	email, err := ac.accounts.IssueOTPForLogin(c.Request().Context(), req.Email)
	if err != nil {
		return authError(c, err, "Login failed")
	}
	return c.JSON(http.StatusOK, models.OTPSentResponse{Message: "OTP sent to your email", Email: email})
}

// VerifyOTP consumes an OTP and returns a session token
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	res, err := ac.accounts.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return authError(c, err, "OTP verification failed")
	}

	message := "Login successful"
	if res.Created {
		message = "Account created successfully"
	}
	return c.JSON(http.StatusOK, models.VerifyOTPResponse{
		Message: message,
		Token:   res.Token,
		User:    res.Profile,
	})
}

// ResendOTP issues a replacement OTP
func (ac *AuthController) ResendOTP(c echo.Context) error {
	var req models.ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	email, err := ac.accounts.ResendOTP(c.Request().Context(), req.Email)
	if err != nil {
		return authError(c, err, "Failed to resend OTP")
	}
	return c.JSON(http.StatusOK, models.OTPSentResponse{Message: "New OTP sent to your email", Email: email})
}

// GoogleLogin signs in with a Google ID token
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	var req models.GoogleAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	res, err := ac.accounts.GoogleSignIn(c.Request().Context(), req.IDToken, req.UserData)
	if err != nil {
		return authError(c, err, "Google authentication failed")
	}
	return c.JSON(http.StatusOK, models.GoogleAuthResponse{
		Token: res.Token,
		User: models.GoogleAuthUser{
			Email: res.User.Email,
			Name:  res.User.Name,
		},
	})
}
