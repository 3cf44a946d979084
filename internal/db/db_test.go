package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by querying each one.
	tables := []string{"sessions", "pager_state"}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cgblog.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
	if err := d.Touch("s1"); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
}

func TestTouchAndPrune(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	for _, id := range []string{"a", "b"} {
		if err := d.Touch(id); err != nil {
			t.Fatalf("Touch(%s) error: %v", id, err)
		}
	}
	// Touching again must not fail on the primary key.
	if err := d.Touch("a"); err != nil {
		t.Fatalf("second Touch error: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO pager_state (session_id, route) VALUES ('b', '/blog'), ('a', '/blog'), ('a', '/')`); err != nil {
		t.Fatalf("seeding pager_state: %v", err)
	}
	// A live session's state still expires once it goes unsaved.
	if _, err := d.Exec(`UPDATE pager_state SET updated_at = '2000-01-01 00:00:00' WHERE session_id = 'a' AND route = '/'`); err != nil {
		t.Fatalf("aging pager_state: %v", err)
	}
	if _, err := d.Exec(`UPDATE sessions SET last_seen = '2000-01-01 00:00:00' WHERE id = 'b'`); err != nil {
		t.Fatalf("aging session: %v", err)
	}

	n, err := d.PruneSessions(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneSessions() error: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d sessions, want 1", n)
	}

	var routes []string
	rows, err := d.Query(`SELECT session_id || route FROM pager_state`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			t.Fatal(err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if len(routes) != 1 || routes[0] != "a/blog" {
		t.Errorf("pager_state rows = %v, want [a/blog]", routes)
	}
}
