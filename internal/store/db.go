// Package store persists workspace state in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aleister1102/sgpatch/internal/common/filemanager"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDB opens (creating if needed) the database at dataSourceName and
// ensures the schema exists. ":memory:" is accepted for tests.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "StoreDB").Logger()
	logger.Debug().Str("db_path", dataSourceName).Msg("Initializing store database connection")

	if dataSourceName != ":memory:" {
		dbDir := filepath.Dir(dataSourceName)
		if err := filemanager.NewFileManager(logger).EnsureDirectory(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store database directory %s: %w", dbDir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// a single connection keeps ":memory:" databases coherent and serializes writers
	dbInstance.SetMaxOpenConns(1)

	db := &DB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Msg("Store database initialized")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the tables if they don't already exist.
func (d *DB) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS workspace_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS patch_runs (
		run_id TEXT PRIMARY KEY,
		project_path TEXT NOT NULL,
		num_files INTEGER NOT NULL,
		num_edits INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		succeeded INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0
	);
	`
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// GetValue returns the raw JSON stored under key. found is false when the
// key has never been set.
func (d *DB) GetValue(ctx context.Context, key string) (value string, found bool, err error) {
	err = d.db.QueryRowContext(ctx, `SELECT value FROM workspace_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state %q: %w", key, err)
	}
	return value, true, nil
}

// SetValue stores raw JSON under key, replacing any previous value.
func (d *DB) SetValue(ctx context.Context, key, value string) error {
	query := `INSERT INTO workspace_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := d.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		d.logger.Error().Err(err).Str("key", key).Msg("Failed to write state")
		return fmt.Errorf("failed to write state %q: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (d *DB) DeleteValue(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM workspace_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}
