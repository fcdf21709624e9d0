package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store used by tests.
// It is not intended for production use.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	clock func() time.Time
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]memoryEntry), clock: time.Now}
}

// WithClock overrides the time source for tests.
func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	s.clock = clock
	return s
}

func (s *MemoryStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = memoryEntry{code: code, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[key]
	if !ok {
		return "", ErrCodeMismatch
	}
	delete(s.codes, key)
	if !e.expiresAt.After(s.clock()) {
		return "", ErrCodeMismatch
	}
	return e.code, nil
}

func (s *MemoryStore) Peek(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[key]
	if !ok || !e.expiresAt.After(s.clock()) {
		return "", ErrCodeMismatch
	}
	return e.code, nil
}
