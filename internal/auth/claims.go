package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported token claims shape for this service.
// Partial-auth invariant: a token with Partial=true was issued before the
// second factor cleared and must never be treated as fully authenticated,
// whatever its expiry says.
type Claims struct {
	jwt.RegisteredClaims

	UserID  string `json:"id"`
	Role    string `json:"role"`
	Partial bool   `json:"partial,omitempty"`
}
