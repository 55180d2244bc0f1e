package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"eventplanner/local-app/internal/log"
	"eventplanner/local-app/internal/model"
)

const profileUserKey = "user"

// ProfileStore keeps the last authenticated user profile across restarts.
type ProfileStore struct {
	db     Database
	logger *log.Logger
}

// NewProfileStore creates a ProfileStore on an opened database with its schema initialized.
func NewProfileStore(db Database, logger *log.Logger) *ProfileStore {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ProfileStore{db: db, logger: logger}
}

// SaveUser replaces the stored profile.
func (s *ProfileStore) SaveUser(user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO profile (key, value, updated) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
		profileUserKey, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

// LoadUser returns the stored profile. Missing, unreadable or malformed rows
// are reported as absent.
func (s *ProfileStore) LoadUser() (model.User, bool) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM profile WHERE key = ?", profileUserKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false
	}
	if err != nil {
		s.logger.Warn(context.Background(), "Failed to read user profile", log.Fields{"error": err})
		return model.User{}, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn(context.Background(), "Discarding malformed user profile", log.Fields{"error": err})
		return model.User{}, false
	}
	if user.ID == "" || user.Username == "" {
		s.logger.Warn(context.Background(), "Discarding incomplete user profile", nil)
		return model.User{}, false
	}
	user.Role = model.ParseRole(string(user.Role))
	return user, true
}

// ClearUser removes the stored profile. Clearing an empty store is not an error.
func (s *ProfileStore) ClearUser() error {
	if _, err := s.db.Exec("DELETE FROM profile WHERE key = ?", profileUserKey); err != nil {
		return fmt.Errorf("failed to clear user profile: %w", err)
	}
	return nil
}
