package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"kucukaslan/tracker/identity"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

// SQLiteStore is the local persistent identity tier, the agent's stand-in
// for the page's localStorage.
type SQLiteStore struct {
	db *sql.DB
}

var _ identity.Store = &SQLiteStore{}

// NewSQLiteStore opens (and creates) the identity database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open identity database: %w", err)
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS identity(
	  key        TEXT PRIMARY KEY,
	  value      TEXT NOT NULL,
	  updated_at INTEGER NOT NULL DEFAULT (unixepoch())
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create identity table: %w", err)
	}

	log.Println("SQLite identity store opened at", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM identity WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", identity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(`
	INSERT INTO identity(key, value, updated_at) VALUES(?, ?, unixepoch())
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Name identifies the store in health reports
func (s *SQLiteStore) Name() string { return "sqlite" }

// HealthCheck pings the database file
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close identity database: %w", err)
	}
	log.Println("SQLite identity store closed")
	return nil
}
