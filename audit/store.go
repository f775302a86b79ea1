// Package audit persists an optional trail of tool invocations.
package audit

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Invocation is one recorded tool dispatch.
type Invocation struct {
	ID           int64     `json:"id"`
	InvocationID string    `json:"invocation_id"`
	Tool         string    `json:"tool"`
	Arguments    string    `json:"arguments"`
	Status       string    `json:"status"`
	Detail       string    `json:"detail,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Invocation statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Store implements the trail using modernc.org/sqlite (pure Go).
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Init creates the schema tables.
func (s *Store) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		invocation_id TEXT NOT NULL UNIQUE,
		tool          TEXT NOT NULL,
		arguments     TEXT NOT NULL DEFAULT '{}',
		status        TEXT NOT NULL,
		detail        TEXT NOT NULL DEFAULT '',
		duration_ms   INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool);
	CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records one invocation.
func (s *Store) Insert(inv Invocation) error {
	_, err := s.db.Exec(
		`INSERT INTO invocations (invocation_id, tool, arguments, status, detail, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.InvocationID, inv.Tool, inv.Arguments, inv.Status, inv.Detail, inv.DurationMS,
	)
	return err
}

// Recent returns the most recent invocations, newest first.
func (s *Store) Recent(limit int) ([]Invocation, error) {
	rows, err := s.db.Query(
		`SELECT id, invocation_id, tool, arguments, status, detail, duration_ms, created_at
		 FROM invocations ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invocations []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.InvocationID, &inv.Tool, &inv.Arguments, &inv.Status, &inv.Detail, &inv.DurationMS, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}
	return invocations, rows.Err()
}
