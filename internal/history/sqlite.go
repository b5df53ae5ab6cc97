// Package history persists daemon build records in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed (or failed) build run.
type Record struct {
	BuildID  string
	Start    time.Time
	End      time.Time
	Outcome  string
	Pages    int
	Failures int
	Trigger  string // "scheduled", "startup", "reload"
}

// Store is a SQLite-backed build history.
//
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and initializes) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		start_ts INTEGER NOT NULL,
		end_ts INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		trigger_kind TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_start ON builds(start_ts);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a build run.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, start_ts, end_ts, outcome, pages, failures, trigger_kind) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.BuildID, r.Start.Unix(), r.End.Unix(), r.Outcome, r.Pages, r.Failures, r.Trigger,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent build records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, start_ts, end_ts, outcome, pages, failures, trigger_kind FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var startTS, endTS int64
		if err := rows.Scan(&r.BuildID, &startTS, &endTS, &r.Outcome, &r.Pages, &r.Failures, &r.Trigger); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Start = time.Unix(startTS, 0)
		r.End = time.Unix(endTS, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
