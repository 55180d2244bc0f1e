package storage

import (
	"context"
	"fmt"

	"eventplanner/local-app/internal/config"
	"eventplanner/local-app/internal/log"
)

// CredentialStore combines session-scoped credentials with the durable user profile.
type CredentialStore struct {
	*SessionStore
	*ProfileStore
	db Database
}

// NewCredentialStore wraps an already-initialized database.
func NewCredentialStore(db Database, logger *log.Logger) *CredentialStore {
	return &CredentialStore{
		SessionStore: NewSessionStore(),
		ProfileStore: NewProfileStore(db, logger),
		db:           db,
	}
}

// Open creates the database named by the configuration, initializes its schema
// and returns a CredentialStore on top of it.
func Open(cfg *config.Config, logger *log.Logger) (*CredentialStore, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	driver, err := ValidateDBDriver(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}
	db, err := NewDatabase(driver, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Open(cfg.DatabasePath()); err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info(context.Background(), "Storage opened", log.Fields{"driver": string(driver), "path": cfg.DatabasePath()})
	return NewCredentialStore(db, logger), nil
}

// Close releases the underlying database.
func (s *CredentialStore) Close() error {
	return s.db.Close()
}
