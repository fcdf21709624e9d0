package session

import (
	"encoding/json"
	"errors"
	"sync"
)

// ErrNotStored is returned when no token or user record has been persisted.
var ErrNotStored = errors.New("session: not stored")

// Storage persists the token and user record across restarts. The store
// writes both keys wholesale; partial updates are not part of the contract.
type Storage interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	SaveUser(u User) error
	LoadUser() (User, error)
	Clear() error
}

// MemoryStorage is the in-memory Storage used by tests and by embedders
// that keep sessions per-process.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
	user  []byte
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (s *MemoryStorage) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStorage) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNotStored
	}
	return s.token, nil
}

func (s *MemoryStorage) SaveUser(u User) error {
	buf, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = buf
	return nil
}

func (s *MemoryStorage) LoadUser() (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, ErrNotStored
	}
	var u User
	if err := json.Unmarshal(s.user, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
