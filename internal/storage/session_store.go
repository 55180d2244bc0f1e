package storage

import (
	"sync"

	"eventplanner/local-app/internal/model"
)

// SessionStore holds credentials for the lifetime of the process only.
type SessionStore struct {
	mu    sync.RWMutex
	creds model.Credentials
	set   bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(creds model.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = !creds.Empty()
}

// Load returns the saved credentials, or false when none are present.
func (s *SessionStore) Load() (model.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return model.Credentials{}, false
	}
	return s.creds, true
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = model.Credentials{}
	s.set = false
}
