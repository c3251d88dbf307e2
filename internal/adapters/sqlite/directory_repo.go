// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rollcall/internal/ports/secondary"
)

// WorkerRepository implements secondary.WorkerRepository with SQLite.
type WorkerRepository struct {
	db *sql.DB
}

// NewWorkerRepository creates a new SQLite worker repository.
func NewWorkerRepository(db *sql.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// GetByID retrieves a worker by its ID.
func (r *WorkerRepository) GetByID(ctx context.Context, id string) (*secondary.WorkerRecord, error) {
	record := &secondary.WorkerRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, full_name FROM workers WHERE id = ?",
		id,
	).Scan(&record.ID, &record.FullName)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("worker %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}

	return record, nil
}

// List retrieves all workers ordered by name.
func (r *WorkerRepository) List(ctx context.Context) ([]*secondary.WorkerRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, full_name FROM workers ORDER BY full_name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []*secondary.WorkerRecord
	for rows.Next() {
		record := &secondary.WorkerRecord{}
		if err := rows.Scan(&record.ID, &record.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, record)
	}

	return workers, rows.Err()
}

// ProjectRepository implements secondary.ProjectRepository with SQLite.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	record := &secondary.ProjectRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, status FROM projects WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &record.Status)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return record, nil
}

// List retrieves all projects ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, status FROM projects ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.ProjectRecord
	for rows.Next() {
		record := &secondary.ProjectRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Status); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, record)
	}

	return projects, rows.Err()
}

// AssignmentRepository implements secondary.AssignmentRepository with SQLite.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByWorker retrieves every assignment window of a worker.
func (r *AssignmentRepository) ListByWorker(ctx context.Context, workerID string) ([]*secondary.AssignmentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, worker_id, project_id, assigned_from, assigned_to
		FROM assignments WHERE worker_id = ?
		ORDER BY project_id ASC, assigned_from ASC`,
		workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*secondary.AssignmentRecord
	for rows.Next() {
		var from, to sql.NullString
		record := &secondary.AssignmentRecord{}
		if err := rows.Scan(&record.ID, &record.WorkerID, &record.ProjectID, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		record.AssignedFrom = from.String
		record.AssignedTo = to.String
		assignments = append(assignments, record)
	}

	return assignments, rows.Err()
}

// Ensure the directory repositories implement their interfaces.
var (
	_ secondary.WorkerRepository     = (*WorkerRepository)(nil)
	_ secondary.ProjectRepository    = (*ProjectRepository)(nil)
	_ secondary.AssignmentRepository = (*AssignmentRepository)(nil)
)
