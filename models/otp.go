package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OTPValidity is how long an issued code can be consumed.
const OTPValidity = 10 * time.Minute

// OTPHashCost is the bcrypt cost used for stored codes.
var OTPHashCost = bcrypt.DefaultCost

// OTP is a one-time code stored as a bcrypt hash together with its expiry.
// Both fields live in one sub-document so they are always set or unset together.
type OTP struct {
	CodeHash  string    `bson:"codeHash"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// GenerateOTPCode returns a random zero-padded 6-digit code.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NewOTP hashes code and sets its expiry OTPValidity after now.
func NewOTP(code string, now time.Time) (*OTP, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), OTPHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}
	return &OTP{
		CodeHash:  string(hash),
		ExpiresAt: now.Add(OTPValidity),
	}, nil
}

// Matches compares a submitted code with the stored hash.
func (o *OTP) Matches(code string) bool {
	if o == nil || o.CodeHash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)) == nil
}

// Expired is true once now reaches the expiry; a zero expiry counts as expired.
func (o *OTP) Expired(now time.Time) bool {
	if o == nil || o.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(o.ExpiresAt)
}
