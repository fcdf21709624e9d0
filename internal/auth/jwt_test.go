package auth

import (
	"testing"
	"time"

	"tukangin-platform/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:   "secret",
		JWTIssuer:   "issuer",
		JWTAudience: "aud",
		SessionTTL:  24 * time.Hour,
		PartialTTL:  10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifySessionToken(t *testing.T) {
	m := testManager(t)

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.IssueSession(now, "user-1", "CUSTOMER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(tok, false, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "CUSTOMER" || claims.Partial {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsPartialMismatch(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	partial, err := m.IssuePartial(now, "u", "CUSTOMER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(partial, false, now); err == nil {
		t.Fatalf("expected partial flag mismatch")
	}

	full, err := m.IssueSession(now, "u", "CUSTOMER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(full, true, now); err == nil {
		t.Fatalf("expected partial flag mismatch for full token")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.IssueSession(now, "u", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, false, now.Add(25*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}
