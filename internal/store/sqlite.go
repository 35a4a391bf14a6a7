// Package store persists the last applied settings in a small SQLite
// key-value table so a restarted daemon picks up where the user left off.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"svgod/pkg/types"
)

const settingsKey = "settings/last"

// Store is a SQLite-backed key-value store. It satisfies the orchestrator's
// SettingsStore interface via Load/Save.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create settings db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings db: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value for key, or false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put upserts key to value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// Load returns the persisted settings, or false when none were saved yet.
func (s *Store) Load(ctx context.Context) (types.Settings, bool, error) {
	raw, ok, err := s.Get(ctx, settingsKey)
	if err != nil || !ok {
		return types.Settings{}, false, err
	}
	var out types.Settings
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return types.Settings{}, false, fmt.Errorf("decode persisted settings: %w", err)
	}
	return out, true, nil
}

// Save persists the settings under a fixed key.
func (s *Store) Save(ctx context.Context, v types.Settings) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, settingsKey, string(raw))
}

func (s *Store) Close() error { return s.db.Close() }
