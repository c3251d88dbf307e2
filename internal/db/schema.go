package db

import "database/sql"

// SchemaSQL is the complete schema for fresh rollcall installs.
// It reflects the state after all migrations have run.
//
// Tests load it through GetSchemaSQL() rather than declaring their own
// tables, so a repository that references a missing column fails at once
// with "no such column".
//
// When adding columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Worker directory
CREATE TABLE IF NOT EXISTS workers (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Project directory
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('ongoing', 'completed')) DEFAULT 'ongoing',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Assignment windows (NULL bound = open)
CREATE TABLE IF NOT EXISTS assignments (
	id TEXT PRIMARY KEY,
	worker_id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	assigned_from TEXT,
	assigned_to TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (worker_id) REFERENCES workers(id) ON DELETE CASCADE,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_assignments_worker ON assignments(worker_id);

-- Attendance (structured columns are NULL on rows written before they existed)
CREATE TABLE IF NOT EXISTS attendance (
	id TEXT PRIMARY KEY,
	worker_id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	is_present INTEGER,
	is_half_day INTEGER,
	hours_worked REAL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (worker_id) REFERENCES workers(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_triple ON attendance(worker_id, date, project_id);
CREATE INDEX IF NOT EXISTS idx_attendance_worker_date ON attendance(worker_id, date);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(conn)
	}

	// An attendance table without schema_version predates versioning.
	var legacyCount int
	err = conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='attendance'").Scan(&legacyCount)
	if err != nil {
		return err
	}
	if legacyCount > 0 {
		return RunMigrations(conn)
	}

	if _, err := conn.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(conn); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
