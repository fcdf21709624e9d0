package user

import "time"

// User is an account row. PasswordHash never leaves this package; the
// API-facing view lives in internal/session.User.
type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	// Role is one of CUSTOMER, PROVIDER, ADMIN (policy.Role values).
	Role string `json:"role" db:"role"`

	FullName  string `json:"full_name" db:"full_name"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`

	// Provider profile. BusinessVerified is flipped by back-office review,
	// not by anything in this service.
	BusinessName     string `json:"business_name,omitempty" db:"business_name"`
	BusinessVerified bool   `json:"business_verified" db:"business_verified"`

	// AdminRole is the back-office sub-role (e.g. support, finance).
	AdminRole string `json:"admin_role,omitempty" db:"admin_role"`

	TwoFactorEnabled bool `json:"two_factor_enabled" db:"two_factor_enabled"`
	EmailVerified    bool `json:"email_verified" db:"email_verified"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
