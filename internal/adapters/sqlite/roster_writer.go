package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/rollcall/internal/ports/secondary"
)

// RosterWriter implements secondary.RosterWriter with SQLite.
type RosterWriter struct {
	db *sql.DB
}

// NewRosterWriter creates a new SQLite roster writer.
func NewRosterWriter(db *sql.DB) *RosterWriter {
	return &RosterWriter{db: db}
}

// UpsertWorker creates a worker or renames an existing one.
func (w *RosterWriter) UpsertWorker(ctx context.Context, worker *secondary.WorkerRecord) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO workers (id, full_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, updated_at = CURRENT_TIMESTAMP`,
		worker.ID, worker.FullName,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert worker %s: %w", worker.ID, err)
	}
	return nil
}

// UpsertProject creates a project or updates an existing one.
func (w *RosterWriter) UpsertProject(ctx context.Context, project *secondary.ProjectRecord) error {
	status := project.Status
	if status == "" {
		status = "ongoing"
	}

	_, err := w.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, status) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, status = excluded.status, updated_at = CURRENT_TIMESTAMP`,
		project.ID, project.Name, status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", project.ID, err)
	}
	return nil
}

// ReplaceAssignments swaps every assignment window of a worker in one transaction.
func (w *RosterWriter) ReplaceAssignments(ctx context.Context, workerID string, assignments []*secondary.AssignmentRecord) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments WHERE worker_id = ?", workerID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	for _, a := range assignments {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO assignments (id, worker_id, project_id, assigned_from, assigned_to) VALUES (?, ?, ?, ?, ?)",
			id, workerID, a.ProjectID, nullString(a.AssignedFrom), nullString(a.AssignedTo),
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for project %s: %w", a.ProjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure RosterWriter implements the interface.
var _ secondary.RosterWriter = (*RosterWriter)(nil)
