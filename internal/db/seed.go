package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with development fixtures: two workers,
// three projects, their assignment windows, and a few attendance rows in both
// the structured and the legacy status-only shape.
func SeedFixtures(database *sql.DB) error {
	workers := []struct{ id, name string }{
		{"W-001", "Ada Lovelace"},
		{"W-002", "Grace Hopper"},
	}
	for _, w := range workers {
		if _, err := database.Exec(
			"INSERT INTO workers (id, full_name) VALUES (?, ?)",
			w.id, w.name,
		); err != nil {
			return fmt.Errorf("seed workers: %w", err)
		}
	}

	projects := []struct{ id, name, status string }{
		{"P-001", "Harbour Bridge", "ongoing"},
		{"P-002", "North Tunnel", "ongoing"},
		{"P-003", "Old Quay", "completed"},
	}
	for _, p := range projects {
		if _, err := database.Exec(
			"INSERT INTO projects (id, name, status) VALUES (?, ?, ?)",
			p.id, p.name, p.status,
		); err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
	}

	assignments := []struct {
		id, worker, project string
		from, to            any
	}{
		{"ASG-001", "W-001", "P-001", "2025-01-01", nil},
		{"ASG-002", "W-001", "P-002", "2025-01-01", "2025-03-31"},
		{"ASG-003", "W-001", "P-003", nil, "2024-12-31"},
		{"ASG-004", "W-002", "P-002", nil, nil},
	}
	for _, a := range assignments {
		if _, err := database.Exec(
			"INSERT INTO assignments (id, worker_id, project_id, assigned_from, assigned_to) VALUES (?, ?, ?, ?, ?)",
			a.id, a.worker, a.project, a.from, a.to,
		); err != nil {
			return fmt.Errorf("seed assignments: %w", err)
		}
	}

	if _, err := database.Exec(`
		INSERT INTO attendance (id, worker_id, project_id, date, status, is_present, is_half_day, hours_worked) VALUES
			('ATT-001', 'W-001', 'P-001', '2025-01-13', 'Present', 1, 0, 8),
			('ATT-002', 'W-001', 'P-001', '2025-01-14', 'Half Day', 1, 1, 4),
			('ATT-003', 'W-001', 'P-002', '2025-01-15', 'Absent', 0, 0, 0)
	`); err != nil {
		return fmt.Errorf("seed attendance: %w", err)
	}

	// Rows from before the structured columns existed.
	if _, err := database.Exec(`
		INSERT INTO attendance (id, worker_id, project_id, date, status) VALUES
			('ATT-004', 'W-001', 'P-003', '2024-12-20', 'present'),
			('ATT-005', 'W-001', 'P-003', '2024-12-23', '6 h')
	`); err != nil {
		return fmt.Errorf("seed legacy attendance: %w", err)
	}

	return nil
}
