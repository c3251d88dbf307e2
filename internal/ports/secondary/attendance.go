package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by repositories when a lookup by ID finds nothing.
var ErrNotFound = errors.New("not found")

// WorkerRepository defines the secondary port for the worker directory.
type WorkerRepository interface {
	// GetByID retrieves a worker by its ID.
	GetByID(ctx context.Context, id string) (*WorkerRecord, error)

	// List retrieves all workers.
	List(ctx context.Context) ([]*WorkerRecord, error)
}

// WorkerRecord represents a worker as stored in persistence.
type WorkerRecord struct {
	ID       string
	FullName string
}

// ProjectRepository defines the secondary port for the project directory.
type ProjectRepository interface {
	// GetByID retrieves a project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// List retrieves all projects.
	List(ctx context.Context) ([]*ProjectRecord, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID     string
	Name   string
	Status string // ongoing, completed
}

// AssignmentRepository defines the secondary port for the assignment directory.
// Assignments are managed elsewhere; this port is read-only.
type AssignmentRepository interface {
	// ListByWorker retrieves every assignment row of a worker.
	ListByWorker(ctx context.Context, workerID string) ([]*AssignmentRecord, error)
}

// AssignmentRecord represents one assignment window as stored in persistence.
type AssignmentRecord struct {
	ID           string
	WorkerID     string
	ProjectID    string
	AssignedFrom string // YYYY-MM-DD; empty string means open start
	AssignedTo   string // YYYY-MM-DD; empty string means open end
}

// AttendanceRepository defines the secondary port for the remote attendance store.
type AttendanceRepository interface {
	// QueryByWorker retrieves every attendance row of a worker.
	QueryByWorker(ctx context.Context, workerID string) ([]*AttendanceRecord, error)

	// Insert persists a new row and returns it with its generated ID.
	Insert(ctx context.Context, record *AttendanceRecord) (*AttendanceRecord, error)

	// UpdateByID applies patch to the row with the given ID and returns the updated row.
	UpdateByID(ctx context.Context, id string, patch AttendancePatch) (*AttendanceRecord, error)

	// DeleteByID removes a row. Deleting a missing ID is not an error.
	DeleteByID(ctx context.Context, id string) error
}

// AttendanceRecord represents an attendance row as stored in persistence.
// The structured fields are nil on rows written before they existed.
type AttendanceRecord struct {
	ID          string
	WorkerID    string
	ProjectID   string
	Date        string // YYYY-MM-DD
	IsPresent   *bool
	IsHalfDay   *bool
	HoursWorked *float64
	Status      string
	CreatedAt   string
	UpdatedAt   string
}

// AttendancePatch carries the mutable fields of an attendance row.
type AttendancePatch struct {
	IsPresent   bool
	IsHalfDay   bool
	HoursWorked float64
	Status      string
}

// RosterWriter defines the secondary port used to load directory data
// (workers, projects, assignments) from an external roster.
type RosterWriter interface {
	// UpsertWorker creates or renames a worker.
	UpsertWorker(ctx context.Context, worker *WorkerRecord) error

	// UpsertProject creates or updates a project.
	UpsertProject(ctx context.Context, project *ProjectRecord) error

	// ReplaceAssignments replaces every assignment row of a worker.
	ReplaceAssignments(ctx context.Context, workerID string, assignments []*AssignmentRecord) error
}
