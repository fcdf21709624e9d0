package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is the in-memory Repository used by tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User // keyed by id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Create(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) SetEmailVerified(_ context.Context, id string, verified bool, now time.Time) error {
	return r.update(id, func(u *User) {
		u.EmailVerified = verified
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) SetTwoFactor(_ context.Context, id string, enabled bool, now time.Time) error {
	return r.update(id, func(u *User) {
		u.TwoFactorEnabled = enabled
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) UpdatePasswordHash(_ context.Context, id, hash string, now time.Time) error {
	return r.update(id, func(u *User) {
		u.PasswordHash = hash
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) update(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}
