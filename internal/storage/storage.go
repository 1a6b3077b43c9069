package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/watchlist/internal/shared"
)

// Storage persists string values under string keys.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error) // Get returns the value and whether the key exists
	Set(ctx context.Context, key, value string) error          // Set creates or replaces the value
	Remove(ctx context.Context, key string) error              // Remove deletes the key; removing a missing key succeeds
}

var (
	_ Storage = (*SQLiteStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)

// SQLiteStorage implements [Storage] on the local_storage table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new [SQLiteStorage] with the given database connection.
//
// The database must have had [shared.RunMigrations] applied.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Get retrieves the value stored under key.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %q: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQLiteStorage) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to remove %q: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Keys lists all stored keys in order.
func (s *SQLiteStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM local_storage ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: failed to scan key: %v", shared.ErrStorage, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}
	return keys, nil
}

// MemoryStorage implements [Storage] in memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage creates an empty [MemoryStorage].
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
