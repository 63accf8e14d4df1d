// Package errorlog persists captured job failures keyed by an opaque
// reference id, so raw error details never reach end users directly.
package errorlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Lookup for a well-formed but unknown id.
var ErrNotFound = errors.New("error log entry not found")

// Entry is one captured failure. Immutable after insertion.
type Entry struct {
	ID        uuid.UUID
	Details   string
	CreatedAt int64 // unix seconds
}

type Store struct {
	db *sql.DB
}

// Open creates the parent directory if needed and opens the SQLite database.
// Call Initialize before first use.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Initialize creates the schema. Idempotent; safe to call multiple times.
func (s *Store) Initialize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS error_log (
  id TEXT PRIMARY KEY,
  traceback TEXT,
  timestamp INTEGER
);
`)
	if err != nil {
		return fmt.Errorf("create error_log table: %w", err)
	}
	return nil
}

// Record persists a failure description under a fresh random id and returns
// the id. A storage failure here is fatal for the surrounding request: with
// no id there is nothing useful to report back.
func (s *Store) Record(ctx context.Context, details string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO error_log (id, traceback, timestamp) VALUES (?, ?, ?)`,
		id.String(), details, time.Now().Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record error log: %w", err)
	}
	return id, nil
}

// Lookup returns the entry for id, or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, traceback, timestamp FROM error_log WHERE id = ?`, id.String(),
	)

	var (
		rawID     string
		details   string
		createdAt int64
	)
	if err := row.Scan(&rawID, &details, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt entry id %q: %w", rawID, err)
	}
	return &Entry{ID: parsed, Details: details, CreatedAt: createdAt}, nil
}
