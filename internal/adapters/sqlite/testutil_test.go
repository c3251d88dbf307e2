// Package sqlite_test contains integration tests for SQLite repositories.
//
// Every test database is built from db.GetSchemaSQL(), so tests run against
// the authoritative schema. Do not declare tables in test files; use
// setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/rollcall/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Each connection to :memory: is its own database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedWorker inserts a test worker and returns its ID.
func seedWorker(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "W-001"
	}
	if name == "" {
		name = "Test Worker"
	}
	if _, err := db.Exec("INSERT INTO workers (id, full_name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed worker: %v", err)
	}
	return id
}

// seedProject inserts a test project and returns its ID.
func seedProject(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "P-001"
	}
	if name == "" {
		name = "Test Project"
	}
	if _, err := db.Exec("INSERT INTO projects (id, name, status) VALUES (?, ?, 'ongoing')", id, name); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// seedAssignment inserts an assignment window. Empty bounds are stored as NULL.
func seedAssignment(t *testing.T, db *sql.DB, id, workerID, projectID, from, to string) {
	t.Helper()
	var f, u any
	if from != "" {
		f = from
	}
	if to != "" {
		u = to
	}
	_, err := db.Exec(
		"INSERT INTO assignments (id, worker_id, project_id, assigned_from, assigned_to) VALUES (?, ?, ?, ?, ?)",
		id, workerID, projectID, f, u,
	)
	if err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
}

// seedLegacyAttendance inserts a status-only attendance row.
func seedLegacyAttendance(t *testing.T, db *sql.DB, id, workerID, projectID, date, status string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO attendance (id, worker_id, project_id, date, status) VALUES (?, ?, ?, ?, ?)",
		id, workerID, projectID, date, status,
	)
	if err != nil {
		t.Fatalf("failed to seed attendance: %v", err)
	}
}
