// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record, keyed by its normalized email.
type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Name        string             `json:"name,omitempty" bson:"name,omitempty"`
	DateOfBirth string             `json:"dob,omitempty" bson:"dob,omitempty"`
	Picture     string             `json:"picture,omitempty" bson:"picture,omitempty"`
	GoogleID    string             `json:"googleId,omitempty" bson:"googleId,omitempty"`

	// Signup data held until the first successful OTP verification
	PendingName        string `json:"-" bson:"pendingName,omitempty"`
	PendingDateOfBirth string `json:"-" bson:"pendingDob,omitempty"`

	OTP          *OTP   `json:"-" bson:"otp,omitempty"`
	SessionToken string `json:"-" bson:"sessionToken,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsActive reports whether a session token was ever issued for the account.
func (u *User) IsActive() bool {
	return u.SessionToken != ""
}

// HasPendingProfile reports whether signup fields are waiting for promotion.
func (u *User) HasPendingProfile() bool {
	return u.PendingName != "" && u.PendingDateOfBirth != ""
}

// PromotePendingProfile moves the staged signup fields into the permanent
// ones. It returns false when there was nothing to promote.
func (u *User) PromotePendingProfile() bool {
	if !u.HasPendingProfile() {
		return false
	}
	u.Name = u.PendingName
	u.DateOfBirth = u.PendingDateOfBirth
	u.PendingName = ""
	u.PendingDateOfBirth = ""
	return true
}

// UserProfile is the public snapshot returned after verification
type UserProfile struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dob"`
}

// Profile returns the permanent profile fields.
func (u *User) Profile() UserProfile {
	return UserProfile{Email: u.Email, Name: u.Name, DateOfBirth: u.DateOfBirth}
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the body of failed auth requests
type ErrorResponse struct {
	Error string `json:"error"`
}
