package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec interprets bearer tokens without checking their signature.
//
// Trust boundary: tokens reaching the request gate were signed and verified
// by the issuing side of this service (or an upstream gateway). The codec
// only reads claims it assumes genuine; anything that needs signature
// verification must go through Manager.Verify instead.

var errEmptyToken = errors.New("empty token")

// Decode parses the claims of a bearer token. It never panics; malformed
// input is reported as an error.
func Decode(token string) (Claims, error) {
	if token == "" {
		return Claims{}, errEmptyToken
	}
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// IsValid reports whether a token grants a full session at instant now.
// It fails closed: empty or malformed tokens, tokens without an expiry,
// expired tokens, and partial (OTP-pending) tokens are all invalid.
// now is captured once by the caller so repeated checks within one request
// cannot tear.
func IsValid(token string, now time.Time) bool {
	claims, err := Decode(token)
	if err != nil {
		return false
	}
	if claims.Partial {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.After(now)
}
