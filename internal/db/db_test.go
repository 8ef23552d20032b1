package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/vyaparsetu/portal/internal/db"
)

// TestWALMode verifies that Open enables WAL journal mode for sqlite files.
func TestWALMode(t *testing.T) {
	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "wal_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

// TestOpen_Indexes verifies registrations are keyed by (agent_id, id) and
// carry no extra index, and that account emails are unique.
func TestOpen_Indexes(t *testing.T) {
	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "idx_test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	regs := indexOrigins(t, sqlDB, "registrations")
	if len(regs) != 1 {
		t.Errorf("registrations should only have its primary key index, found: %v", regs)
	}
	for name, origin := range regs {
		if origin != "pk" {
			t.Errorf("index %s has origin %q, want pk", name, origin)
		}
	}

	var cols []string
	rows, err := sqlDB.Query("SELECT name FROM pragma_table_info('registrations') WHERE pk > 0 ORDER BY pk")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, c)
	}
	if len(cols) != 2 || cols[0] != "agent_id" || cols[1] != "id" {
		t.Errorf("registrations primary key = %v, want [agent_id id]", cols)
	}

	found := false
	for name := range indexOrigins(t, sqlDB, "accounts") {
		if name == "idx_accounts_email" {
			found = true
		}
	}
	if !found {
		t.Error("unique index on accounts.email missing")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := db.Open("mysql", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := db.SQLiteDSN("a.db"); got != "a.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on" {
		t.Errorf("SQLiteDSN(a.db) = %q", got)
	}
	if got := db.SQLiteDSN("file::memory:?cache=shared"); got != "file::memory:?cache=shared" {
		t.Errorf("SQLiteDSN kept query = %q", got)
	}
}

// indexOrigins maps index name to its origin ("c", "u" or "pk").
func indexOrigins(t *testing.T, sqlDB *sql.DB, table string) map[string]string {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = origin
	}
	return out
}
