package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block an auth flow on
//   audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the auth flow that produced the record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the account the event concerns; empty for failed
	// logins against unknown emails.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Email is recorded for pre-authentication events where no account id
	// exists yet.
	Email string `json:"email,omitempty" db:"email"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLoginSuccess    EventType = "login_success"
	EventTypeLoginFailure    EventType = "login_failure"
	EventTypeLoginThrottled  EventType = "login_throttled"
	EventTypeOTPIssued       EventType = "otp_issued"
	EventTypeOTPVerified     EventType = "otp_verified"
	EventTypeEmailVerified   EventType = "email_verified"
	EventTypePasswordReset   EventType = "password_reset"
	EventTypeTwoFactorToggle EventType = "two_factor_toggle"
	EventTypeLogout          EventType = "logout"
)
