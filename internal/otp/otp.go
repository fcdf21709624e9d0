package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Purpose scopes a code to one flow; a login code can never pass an
// email-verification check.
type Purpose string

const (
	PurposeLogin       Purpose = "login"
	PurposeVerifyEmail Purpose = "verify_email"
	PurposeReset       Purpose = "reset"
)

const codeLength = 6

// DefaultTTL bounds how long a code stays redeemable.
const DefaultTTL = 5 * time.Minute

var (
	// ErrCodeMismatch covers absent, expired, and wrong codes alike so the
	// caller cannot distinguish them.
	ErrCodeMismatch = errors.New("otp: code mismatch")
)

// Store keeps issued codes with a TTL. Keys are single-use: Take must
// remove the code it returns, Peek must not.
type Store interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
	Peek(ctx context.Context, key string) (string, error)
}

// Service issues and redeems one-time codes.
type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store) *Service {
	return &Service{store: store, ttl: DefaultTTL}
}

// WithTTL overrides the code lifetime.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	s.ttl = ttl
	return s
}

// Issue generates a fresh 6-digit code for (purpose, email), replacing
// any previous one.
func (s *Service) Issue(ctx context.Context, purpose Purpose, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, storeKey(purpose, email), code, s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Redeem checks a submitted code. Success consumes the code; a second
// Redeem with the same code fails. Comparison is constant-time.
func (s *Service) Redeem(ctx context.Context, purpose Purpose, email, code string) error {
	stored, err := s.store.Take(ctx, storeKey(purpose, email))
	if err != nil {
		return ErrCodeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

// Check verifies a code without consuming it. Used by the two-step
// password reset, where the code is checked once for the UI and redeemed
// together with the new password.
func (s *Service) Check(ctx context.Context, purpose Purpose, email, code string) error {
	stored, err := s.store.Peek(ctx, storeKey(purpose, email))
	if err != nil {
		return ErrCodeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

func storeKey(purpose Purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
