package session

import (
	"context"
	"sync"
	"time"

	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/policy"
)

// failureMessage is the generic message shown for transport-level errors.
// Details go to logs, never to the UI.
const failureMessage = "Terjadi kesalahan, silakan coba lagi"

// Store holds the current session for one client. It is handed to UI
// code explicitly rather than living as package state, and its lifecycle
// follows the embedding application.
//
// State transitions are serialized by a mutex; two concurrent Login calls
// cannot interleave their storage writes.
type Store struct {
	api     AuthAPI
	storage Storage

	mu            sync.Mutex
	user          *User
	token         string
	authenticated bool
	loading       bool
	lastErr       string
}

func NewStore(api AuthAPI, storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{api: api, storage: storage}
}

// Restore loads a persisted session on startup. A stale or partial token
// clears storage instead of reviving a dead session.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.storage.LoadToken()
	if err != nil {
		return
	}
	if !auth.IsValid(token, time.Now()) {
		_ = s.storage.Clear()
		return
	}
	user, err := s.storage.LoadUser()
	if err != nil {
		_ = s.storage.Clear()
		return
	}
	s.token = token
	s.user = &user
	s.authenticated = true
}

// Login exchanges credentials for a session. Partial outcomes (OTP
// pending, email unverified) are reported through the Result flags and do
// not authenticate.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	env, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail()
	}
	if !env.Success {
		return s.failWith(env.Message)
	}

	if env.RequireOTP {
		return Result{Success: true, RequireOTP: true, PartialToken: env.PartialToken, Message: env.Message}
	}
	if env.NeedVerification {
		return Result{Success: true, NeedVerification: true, Message: env.Message}
	}

	return s.establish(env)
}

// Register signs a new user up. Accounts start unverified, so the normal
// outcome is NeedVerification rather than an authenticated session.
func (s *Store) Register(ctx context.Context, in RegisterInput) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	env, err := s.api.Register(ctx, in)
	if err != nil {
		return s.fail()
	}
	if !env.Success {
		return s.failWith(env.Message)
	}
	if env.NeedVerification {
		return Result{Success: true, NeedVerification: true, Message: env.Message}
	}
	return s.establish(env)
}

// VerifyOTP exchanges a partial token plus code for a full session.
func (s *Store) VerifyOTP(ctx context.Context, email, code, partialToken string) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	env, err := s.api.VerifyOTP(ctx, email, code, partialToken)
	if err != nil {
		return s.fail()
	}
	if !env.Success {
		return s.failWith(env.Message)
	}
	return s.establish(env)
}

// VerifyEmail confirms a registration code and starts the first session.
func (s *Store) VerifyEmail(ctx context.Context, email, code string) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	env, err := s.api.VerifyEmail(ctx, email, code)
	if err != nil {
		return s.fail()
	}
	if !env.Success {
		return s.failWith(env.Message)
	}
	return s.establish(env)
}

// Logout clears local state first, then notifies the server best-effort.
// Calling it on an already-clear store is a no-op with the same outcome.
func (s *Store) Logout(ctx context.Context) Result {
	s.mu.Lock()
	token := s.token
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.lastErr = ""
	_ = s.storage.Clear()
	s.mu.Unlock()

	if token != "" && s.api != nil {
		_ = s.api.Logout(ctx, token)
	}
	return Result{Success: true, RedirectTo: policy.LoginPath}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CurrentUser returns a copy of the session record, or false when signed out.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the current session token, empty when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// establish persists the session carried by env and marks the store
// authenticated. A success envelope without a token or user payload is
// treated as a server fault.
func (s *Store) establish(env Envelope) Result {
	if env.Token == "" || env.Data == nil {
		return s.failWith("")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveToken(env.Token); err != nil {
		s.lastErr = failureMessage
		return Result{Success: false, Message: failureMessage}
	}
	if err := s.storage.SaveUser(*env.Data); err != nil {
		_ = s.storage.Clear()
		s.lastErr = failureMessage
		return Result{Success: false, Message: failureMessage}
	}

	u := *env.Data
	s.user = &u
	s.token = env.Token
	s.authenticated = true
	s.lastErr = ""

	return Result{Success: true, RedirectTo: policy.HomePath(policy.Role(u.Role))}
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) fail() Result {
	return s.failWith("")
}

func (s *Store) failWith(msg string) Result {
	if msg == "" {
		msg = failureMessage
	}
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	return Result{Success: false, Message: msg}
}
