package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// KeyValueStore defines the interface for the durable key-value store.
// Values are opaque string blobs; callers do their own serialization.
type KeyValueStore interface {
	// Get retrieves the value for a key; the bool reports whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under a key, replacing any previous value
	Set(ctx context.Context, key string, value string) error

	// Remove deletes a key; removing a missing key is not an error
	Remove(ctx context.Context, key string) error

	// Close releases the underlying store
	Close() error
}

// SQLiteKeyValueStore implements KeyValueStore using SQLite
type SQLiteKeyValueStore struct {
	db *sql.DB
}

// OpenSQLiteKeyValueStore opens (or creates) the store at the given path
func OpenSQLiteKeyValueStore(path string) (*SQLiteKeyValueStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply busy timeout: %w", err)
	}

	store := &SQLiteKeyValueStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// createTables ensures that the required tables exist
func (s *SQLiteKeyValueStore) createTables() error {
	createKVTable := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	_, err := s.db.Exec(createKVTable)
	return err
}

// Get retrieves the value for a key
func (s *SQLiteKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get value for key %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores a value under a key, replacing any previous value
func (s *SQLiteKeyValueStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set value for key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key
func (s *SQLiteKeyValueStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *SQLiteKeyValueStore) Close() error {
	return s.db.Close()
}
