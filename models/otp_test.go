package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	OTPHashCost = bcrypt.MinCost
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, code)
		}
	}
}

func TestNewOTP(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	otp, err := NewOTP("123456", now)
	require.NoError(t, err)

	assert.NotEqual(t, "123456", otp.CodeHash)
	assert.Equal(t, now.Add(10*time.Minute), otp.ExpiresAt)
	assert.True(t, otp.Matches("123456"))
	assert.False(t, otp.Matches("654321"))
	assert.False(t, otp.Matches(""))
}

func TestOTPExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	otp, err := NewOTP("000001", now)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"just issued", now, false},
		{"one second before expiry", now.Add(OTPValidity - time.Second), false},
		{"exactly at expiry", now.Add(OTPValidity), true},
		{"after expiry", now.Add(OTPValidity + time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, otp.Expired(tt.at))
		})
	}
}

func TestOTPNilAndZero(t *testing.T) {
	var otp *OTP
	assert.False(t, otp.Matches("123456"))
	assert.True(t, otp.Expired(time.Now()))

	assert.True(t, (&OTP{CodeHash: "x"}).Expired(time.Now()))
}
