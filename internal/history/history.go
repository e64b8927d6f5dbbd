// Package history keeps a SQLite log of index builds.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the builds table changes shape; older
// tables are dropped on open.
const schemaVersion = 1

// Status values stored per build.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Entry is one recorded build.
type Entry struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Patterns  int           `json:"patterns"`
	Items     int           `json:"items"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// Store records builds in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// Serialize access through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func createSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return err
	}

	var current int
	if err := db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&current); err != nil {
		current = 0
	}
	if current < schemaVersion {
		log.Info().
			Int("old_version", current).
			Int("new_version", schemaVersion).
			Msg("history schema changed, recreating builds table")
		if _, err := db.Exec("DROP TABLE IF EXISTS builds"); err != nil {
			return err
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			patterns INTEGER NOT NULL,
			items INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	_, err := db.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Record implements ports.BuildRecorder.
func (s *Store) Record(ctx context.Context, rec ports.BuildRecord) error {
	status, errText := StatusSucceeded, ""
	if rec.Err != nil {
		status, errText = StatusFailed, rec.Err.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds (id, started_at, duration_ms, patterns, items, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(),
		rec.Patterns, rec.Items, status, errText)
	if err != nil {
		return fmt.Errorf("failed to record build %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, patterns, items, status, COALESCE(error, '')
		 FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			startedMS  int64
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &startedMS, &durationMS, &e.Patterns, &e.Items, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Last returns the most recent build, or ok=false if none was recorded.
func (s *Store) Last(ctx context.Context) (Entry, bool, error) {
	entries, err := s.Recent(ctx, 1)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[0], true, nil
}

// Prune keeps the newest keep builds and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM builds WHERE id NOT IN (
			SELECT id FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune builds: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return errors.New("history store already closed")
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ ports.BuildRecorder = (*Store)(nil)
