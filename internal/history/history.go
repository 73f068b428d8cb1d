// Package history records every figure fliplot writes in a small SQLite
// database under the project's .fliplot directory.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/fliplot/internal/constants"

	_ "modernc.org/sqlite" // SQLite driver
)

// Run is one written output file.
type Run struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Script     string    `json:"script"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Format     string    `json:"format"`
	Points     int       `json:"points"`
	Digest     string    `json:"digest"`
	RenderedAt time.Time `json:"rendered_at"`
}

// Store persists runs in SQLite.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the history database under projectRoot.
func Open(ctx context.Context, projectRoot string) (*Store, error) {
	dir := filepath.Join(projectRoot, constants.StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", constants.StateDirName, err)
	}
	return OpenPath(ctx, filepath.Join(dir, constants.HistoryDBName))
}

// OpenPath opens the history database at dbPath.
func OpenPath(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Record stores runs in one transaction. Zero RenderedAt values are set to now.
func (s *Store) Record(ctx context.Context, runs ...Run) error {
	if len(runs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (run_id, script, input, output, format, points, digest, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range runs {
		at := r.RenderedAt
		if at.IsZero() {
			at = now
		}
		format := r.Format
		if format == "" {
			format = "html"
		}
		if _, err := stmt.ExecContext(ctx, r.RunID, r.Script, r.Input, r.Output, format,
			r.Points, r.Digest, at.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to record %s: %w", r.Output, err)
		}
	}

	return tx.Commit()
}

// List returns up to limit runs, newest first. limit <= 0 means
// constants.DefaultHistoryLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, `
		SELECT id, run_id, script, input, output, format, points, digest, rendered_at
		FROM runs ORDER BY id DESC LIMIT ?`, normLimit(limit))
}

// ListOutput returns up to limit runs that wrote output, newest first.
func (s *Store) ListOutput(ctx context.Context, output string, limit int) ([]Run, error) {
	return s.query(ctx, `
		SELECT id, run_id, script, input, output, format, points, digest, rendered_at
		FROM runs WHERE output = ? ORDER BY id DESC LIMIT ?`, output, normLimit(limit))
}

func normLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultHistoryLimit
	}
	return limit
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var at string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Script, &r.Input, &r.Output, &r.Format,
			&r.Points, &r.Digest, &at); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.RenderedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("run %d: bad timestamp %q: %w", r.ID, at, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
