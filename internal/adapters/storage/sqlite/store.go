// Package sqlite provides the persistent key-value store on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

const (
	// DefaultBusyTimeout is how long a writer waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second

	schema = `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`

	queryGet    = `SELECT value FROM kv WHERE key = ?`
	queryDelete = `DELETE FROM kv WHERE key = ?`
	queryUpsert = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// Config holds store settings.
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Store is a ports.KeyValueStore backed by a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("open storage: empty path")
	}

	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("open storage: create parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open storage: create schema: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// dsn applies the pragmas to every pooled connection, not just the first.
func dsn(cfg Config) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))

	return "file:" + cfg.Path + "?" + q.Encode()
}

// Get implements ports.KeyValueStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, queryGet, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("key", key)
	}

	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}

	return value, nil
}

// Set implements ports.KeyValueStore.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, queryUpsert, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	return nil
}

// Delete implements ports.KeyValueStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, queryDelete, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "storage" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}
