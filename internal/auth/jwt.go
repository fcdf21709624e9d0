package auth

import (
	"errors"
	"time"

	"tukangin-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	sessionTTL time.Duration
	partialTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		sessionTTL: cfg.SessionTTL,
		partialTTL: cfg.PartialTTL,
	}, nil
}

/* ===================== ISSUE TOKENS ===================== */

// IssueSession issues a full session token for an authenticated user.
func (m *Manager) IssueSession(now time.Time, userID, role string) (string, error) {
	return m.issue(now, userID, role, false, m.sessionTTL)
}

// IssuePartial issues a short-lived token for a login still awaiting its
// second factor. Partial tokens are rejected by IsValid and by Verify
// unless the caller explicitly expects one.
func (m *Manager) IssuePartial(now time.Time, userID, role string) (string, error) {
	return m.issue(now, userID, role, true, m.partialTTL)
}

/* ===================== VERIFY TOKEN ===================== */

// Verify checks the signature and registered claims of a token.
// expectPartial selects which flavor is acceptable; a mismatch is an error
// in both directions.
func (m *Manager) Verify(tokenString string, expectPartial bool, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	// Build ONE validator
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	// Custom claims validation
	if claims.Partial != expectPartial {
		return Claims{}, errors.New("partial flag mismatch")
	}
	if claims.UserID == "" {
		return Claims{}, errors.New("id missing")
	}
	if claims.Role == "" {
		return Claims{}, errors.New("role missing")
	}

	return claims, nil
}

/* ===================== INTERNAL ISSUE ===================== */

func (m *Manager) issue(
	now time.Time,
	userID,
	role string,
	partial bool,
	ttl time.Duration,
) (string, error) {

	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		UserID:  userID,
		Role:    role,
		Partial: partial,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
