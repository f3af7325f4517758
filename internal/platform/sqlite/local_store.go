package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/store"
)

const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		storage_key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`

// LocalStore implements store.LocalStatsStore over one SQLite table.
type LocalStore struct {
	db     *sqlx.DB
	key    string
	logger *slog.Logger
}

var _ store.LocalStatsStore = (*LocalStore)(nil)

// Open connects to the SQLite file at path, creating it and its schema if
// needed. key selects the row the store reads and writes.
func Open(path, key string, logger *slog.Logger) (*LocalStore, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to local database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &LocalStore{
		db:     db,
		key:    key,
		logger: logger.With(slog.String("component", "local_store")),
	}, nil
}

// Load implements store.LocalStatsStore.Load.
func (s *LocalStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM snapshots WHERE storage_key = ?`, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrStatsNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read local snapshot",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("local_snapshot", "load", "query failed", err)
	}
	return data, nil
}

// Save implements store.LocalStatsStore.Save.
func (s *LocalStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (storage_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.key, data, time.Now().UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write local snapshot",
			slog.String("error", err.Error()))
		return store.NewStoreError("local_snapshot", "save", "upsert failed", err)
	}
	return nil
}

// Close releases the database handle.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
