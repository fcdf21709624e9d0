package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBadCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe for accounts.
	ErrBadCredentials = errors.New("bad credentials")
)

// Repository is the persistence contract for accounts.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	SetEmailVerified(ctx context.Context, id string, verified bool, now time.Time) error
	SetTwoFactor(ctx context.Context, id string, enabled bool, now time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error
}

// Service owns credential handling: hashing, credential checks, account
// creation. Flow orchestration (OTP, mail, tokens) lives in the HTTP layer.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	Phone        string
	Role         string
	BusinessName string
}

// Register creates an unverified account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 8 || in.FullName == "" {
		return User{}, ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.clock()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		FullName:     in.FullName,
		Phone:        strings.TrimSpace(in.Phone),
		BusinessName: strings.TrimSpace(in.BusinessName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate checks email+password. Unknown email and wrong password
// return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkEmailVerified flips the verification flag after an OTP check.
func (s *Service) MarkEmailVerified(ctx context.Context, id string) error {
	return s.repo.SetEmailVerified(ctx, id, true, s.clock())
}

// ToggleTwoFactor flips the two-factor flag and returns the new state.
func (s *Service) ToggleTwoFactor(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !u.TwoFactorEnabled
	if err := s.repo.SetTwoFactor(ctx, id, next, s.clock()); err != nil {
		return false, err
	}
	return next, nil
}

// ResetPassword replaces the stored hash after a reset-OTP check.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrInvalidArgument
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, id, string(hash), s.clock())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
