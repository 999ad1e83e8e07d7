// models/auth.go

package models

type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dob"`
}

type LoginRequest struct {
	Email string `json:"email"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// GoogleUserData is optional profile data sent by the client with the ID token
type GoogleUserData struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// GoogleAuthRequest is the model for Google authentication
type GoogleAuthRequest struct {
	IDToken  string          `json:"idToken"`
	UserData *GoogleUserData `json:"userData,omitempty"`
}

type OTPSentResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

type VerifyOTPResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

type GoogleAuthUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type GoogleAuthResponse struct {
	Token string         `json:"token"`
	User  GoogleAuthUser `json:"user"`
}
