package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	MaxOTPAttempts    = 5
	OTPAttemptsWindow = time.Hour
)

// AttemptLimiter counts OTP verification attempts per email.
// Hit returns ErrTooManyAttempts once the limit is exceeded.
type AttemptLimiter interface {
	Hit(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type RedisAttemptLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisAttemptLimiter(client *redis.Client) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client, limit: MaxOTPAttempts, window: OTPAttemptsWindow}
}

func attemptsKey(email string) string {
	return "otp_attempts:" + email
}

func (l *RedisAttemptLimiter) Hit(ctx context.Context, email string) error {
	key := attemptsKey(email)
	attempts, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// window starts at the first attempt
	if attempts == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return err
		}
	}

	if attempts > l.limit {
		return ErrTooManyAttempts
	}
	return nil
}

func (l *RedisAttemptLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, attemptsKey(email)).Err()
}

// NewAttemptLimiter returns a no-op limiter when Redis is unavailable.
func NewAttemptLimiter(client *redis.Client) AttemptLimiter {
	if client == nil {
		return noopLimiter{}
	}
	return NewRedisAttemptLimiter(client)
}

type noopLimiter struct{}

func (noopLimiter) Hit(context.Context, string) error   { return nil }
func (noopLimiter) Reset(context.Context, string) error { return nil }
