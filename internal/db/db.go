package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// TimeFormat is how timestamps are stored, in UTC, matching SQLite's
// datetime('now').
const TimeFormat = "2006-01-02 15:04:05"

// DB wraps a sql.DB holding site session state.
type DB struct {
	*sql.DB
	mu   sync.RWMutex
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every pooled connection would get its own empty database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database file path, or ":memory:".
func (d *DB) Path() string {
	return d.path
}

// Touch records activity for a session, creating it on first sight.
func (d *DB) Touch(sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.Exec(`INSERT INTO sessions (id) VALUES (?)
		ON CONFLICT(id) DO UPDATE SET last_seen = datetime('now')`, sessionID)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// PruneSessions deletes sessions idle since before cutoff, their pager
// state, and any pager state last saved before cutoff. It returns the number
// of sessions removed.
func (d *DB) PruneSessions(cutoff time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ts := cutoff.UTC().Format(TimeFormat)
	if _, err := d.Exec(`DELETE FROM pager_state WHERE updated_at < ? OR session_id IN
		(SELECT id FROM sessions WHERE last_seen < ?)`, ts, ts); err != nil {
		return 0, fmt.Errorf("pruning pager state: %w", err)
	}
	res, err := d.Exec(`DELETE FROM sessions WHERE last_seen < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return res.RowsAffected()
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    last_seen DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pager_state (
    session_id TEXT NOT NULL,
    route TEXT NOT NULL,
    items TEXT NOT NULL DEFAULT '[]',
    page INTEGER NOT NULL DEFAULT 1,
    has_more INTEGER NOT NULL DEFAULT 1,
    scroll_ratio REAL NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(session_id, route)
);

CREATE INDEX IF NOT EXISTS idx_pager_state_updated ON pager_state(updated_at);
`
