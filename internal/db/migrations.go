package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_directory_and_status_only_attendance",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_structured_attendance_columns",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "dedupe_attendance_and_add_triple_index",
		Up:      migrationV3,
	},
}

// LatestVersion returns the highest known migration version.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

func createVersionTable(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(conn *sql.DB) (int, error) {
	var v int
	err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(conn *sql.DB) error {
	if err := createVersionTable(conn); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(conn)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the directory tables and the original attendance table,
// which stored only a free-text status.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('ongoing', 'completed')) DEFAULT 'ongoing',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

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

		CREATE TABLE IF NOT EXISTS attendance (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (worker_id) REFERENCES workers(id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create base tables: %w", err)
	}
	return nil
}

// migrationV2 adds the structured attendance columns. Existing rows keep
// NULLs and are normalized from their status label when read.
func migrationV2(tx *sql.Tx) error {
	for _, stmt := range []string{
		"ALTER TABLE attendance ADD COLUMN is_present INTEGER",
		"ALTER TABLE attendance ADD COLUMN is_half_day INTEGER",
		"ALTER TABLE attendance ADD COLUMN hours_worked REAL",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add attendance column: %w", err)
		}
	}
	return nil
}

// migrationV3 removes duplicate (worker, date, project) rows, keeping the most
// recently inserted, then enforces uniqueness.
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM attendance
		WHERE rowid NOT IN (
			SELECT MAX(rowid) FROM attendance GROUP BY worker_id, date, project_id
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to remove duplicate attendance: %w", err)
	}

	_, err = tx.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_triple ON attendance(worker_id, date, project_id);
		CREATE INDEX IF NOT EXISTS idx_attendance_worker_date ON attendance(worker_id, date);
	`)
	if err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}
	return nil
}
