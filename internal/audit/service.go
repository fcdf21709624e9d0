package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" && e.Email == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a login attempt, successful or not.
func (s *Service) LogLogin(ctx context.Context, success bool, userID, role, email, ip string) error {
	typ := EventTypeLoginSuccess
	msg := "login succeeded"
	if !success {
		typ = EventTypeLoginFailure
		msg = "login failed"
	}
	return s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: userID,
		ActorRole:   role,
		Email:       email,
		IPAddress:   ip,
		Message:     msg,
	})
}

// LogFlow records a non-login auth event (OTP, verification, reset, ...).
func (s *Service) LogFlow(ctx context.Context, typ EventType, userID, role, email, ip, message string) error {
	return s.Append(ctx, Event{
		Type:        typ,
		ActorUserID: userID,
		ActorRole:   role,
		Email:       email,
		IPAddress:   ip,
		Message:     message,
	})
}
