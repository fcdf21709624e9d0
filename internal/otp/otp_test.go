package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndRedeem(t *testing.T) {
	s := NewService(NewMemoryStore())

	code, err := s.Issue(context.Background(), PurposeLogin, "budi@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	if err := s.Redeem(context.Background(), PurposeLogin, "budi@example.com", code); err != nil {
		t.Fatalf("redeem: %v", err)
	}
}

func TestRedeem_SingleUse(t *testing.T) {
	s := NewService(NewMemoryStore())

	code, _ := s.Issue(context.Background(), PurposeLogin, "budi@example.com")
	if err := s.Redeem(context.Background(), PurposeLogin, "budi@example.com", code); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if err := s.Redeem(context.Background(), PurposeLogin, "budi@example.com", code); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("second redeem must fail, got %v", err)
	}
}

func TestRedeem_WrongCodeConsumesNothingButFails(t *testing.T) {
	s := NewService(NewMemoryStore())

	_, _ = s.Issue(context.Background(), PurposeLogin, "budi@example.com")
	if err := s.Redeem(context.Background(), PurposeLogin, "budi@example.com", "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestRedeem_PurposeScoped(t *testing.T) {
	s := NewService(NewMemoryStore())

	code, _ := s.Issue(context.Background(), PurposeLogin, "budi@example.com")
	if err := s.Redeem(context.Background(), PurposeVerifyEmail, "budi@example.com", code); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("login code must not verify email, got %v", err)
	}
}

func TestCheck_DoesNotConsume(t *testing.T) {
	s := NewService(NewMemoryStore())

	code, _ := s.Issue(context.Background(), PurposeReset, "budi@example.com")
	if err := s.Check(context.Background(), PurposeReset, "budi@example.com", code); err != nil {
		t.Fatalf("check: %v", err)
	}
	// Still redeemable afterwards.
	if err := s.Redeem(context.Background(), PurposeReset, "budi@example.com", code); err != nil {
		t.Fatalf("redeem after check: %v", err)
	}
}

func TestRedeem_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	s := NewService(store)

	code, _ := s.Issue(context.Background(), PurposeReset, "budi@example.com")
	now = now.Add(DefaultTTL + time.Second)
	if err := s.Redeem(context.Background(), PurposeReset, "budi@example.com", code); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expired code must fail, got %v", err)
	}
}
