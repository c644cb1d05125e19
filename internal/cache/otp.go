package cache

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IOTPStore issues and verifies one-time codes keyed by email address.
// Codes live in Redis with a TTL so that any instance of the service can
// verify a code issued by another instance.
type IOTPStore interface {
	Issue(ctx context.Context, email string) (code string, deliveryID string, err error)
	Verify(ctx context.Context, email, code string) (bool, error)
}

type otpStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOTPStore creates a Redis-backed OTP store.
func NewOTPStore(rdb *redis.Client, ttl time.Duration) IOTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &otpStore{rdb: rdb, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Issue generates a 6-digit code and stores it under the email key,
// replacing any previous code. The delivery ID correlates the issued code
// with its delivery task in logs.
func (s *otpStore) Issue(ctx context.Context, email string) (string, string, error) {
	if email == "" {
		return "", "", errors.New("email required")
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.rdb.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", "", fmt.Errorf("failed to store OTP for %s: %w", email, err)
	}
	return code, uuid.NewString(), nil
}

// Verify checks the code for the email and consumes it on success.
// An expired or missing code verifies as false, not as an error.
func (s *otpStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read OTP for %s: %w", email, err)
	}
	if stored != code {
		return false, nil
	}
	// single use
	_ = s.rdb.Del(ctx, otpKey(email)).Err()
	return true, nil
}
