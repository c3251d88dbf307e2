package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func columnExists(t *testing.T, conn *sql.DB, table, column string) bool {
	t.Helper()
	var n int
	err := conn.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	if err != nil {
		t.Fatalf("failed to inspect %s: %v", table, err)
	}
	return n > 0
}

func TestOpen_FreshInstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rollcall.db")

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer conn.Close()

	v, err := CurrentVersion(conn)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v != LatestVersion() {
		t.Errorf("expected version %d, got %d", LatestVersion(), v)
	}
	if !columnExists(t, conn, "attendance", "hours_worked") {
		t.Error("expected hours_worked column")
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.db")

	for i := 0; i < 2; i++ {
		conn, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		conn.Close()
	}
}

func TestOpen_UpgradesLegacyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy := openRaw(t, path)
	tx, err := legacy.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := migrationV1(tx); err != nil {
		t.Fatalf("legacy schema: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	_, err = legacy.Exec(`
		INSERT INTO workers (id, full_name) VALUES ('W1', 'Ada');
		INSERT INTO attendance (id, worker_id, project_id, date, status) VALUES
			('A1', 'W1', 'P1', '2025-01-15', 'present'),
			('A2', 'W1', 'P1', '2025-01-15', 'half day'),
			('A3', 'W1', 'P2', '2025-01-15', 'absent');
	`)
	if err != nil {
		t.Fatalf("seed legacy rows: %v", err)
	}
	legacy.Close()

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("expected upgrade to succeed, got %v", err)
	}
	defer conn.Close()

	if !columnExists(t, conn, "attendance", "is_present") {
		t.Error("expected is_present column after upgrade")
	}

	var ids []string
	rows, err := conn.Query("SELECT id FROM attendance ORDER BY id")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != "A2" || ids[1] != "A3" {
		t.Errorf("expected duplicates collapsed to [A2 A3], got %v", ids)
	}

	_, err = conn.Exec("INSERT INTO attendance (id, worker_id, project_id, date) VALUES ('A4', 'W1', 'P2', '2025-01-15')")
	if err == nil {
		t.Error("expected unique index to reject a second row for the same triple")
	}
}

func TestSeedFixtures(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if err := SeedFixtures(conn); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var legacy int
	if err := conn.QueryRow("SELECT COUNT(*) FROM attendance WHERE is_present IS NULL").Scan(&legacy); err != nil {
		t.Fatalf("count: %v", err)
	}
	if legacy != 2 {
		t.Errorf("expected 2 legacy rows, got %d", legacy)
	}
}
