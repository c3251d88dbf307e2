package primary

import "context"

// AttendanceService defines the primary port for attendance operations.
// A service instance is a session scoped to one selected worker.
type AttendanceService interface {
	// SelectWorker (re)loads assignment and attendance data for a worker,
	// replacing the previous scope wholesale.
	SelectWorker(ctx context.Context, workerID string) (*WorkerScope, error)

	// Mark writes an explicit state for a (day, project) cell.
	Mark(ctx context.Context, req MarkRequest) (*CellState, error)

	// Toggle advances a cell one step along the status cycle.
	Toggle(ctx context.Context, req CellRequest) (*CellState, error)

	// ClearMark removes the record of a cell. Clearing an unmarked cell is a no-op.
	ClearMark(ctx context.Context, req CellRequest) error

	// GetCellState returns the read model of one cell.
	GetCellState(ctx context.Context, req CellRequest) (*CellState, error)

	// GetMonthlySummary tallies the selected worker's month.
	GetMonthlySummary(ctx context.Context, filter MonthFilter) (*MonthlySummary, error)

	// GetProjectAssignments lists the selected worker's projects by recent activity.
	GetProjectAssignments(ctx context.Context) ([]*ProjectAssignment, error)

	// ListMarks lists the selected worker's records in a month, oldest first.
	ListMarks(ctx context.Context, filter MonthFilter) ([]*CellState, error)
}

// WorkerScope describes the data loaded by SelectWorker.
type WorkerScope struct {
	WorkerID    string
	FullName    string
	Assignments int
	Records     int
}

// CellRequest identifies one calendar cell.
type CellRequest struct {
	Day       string // YYYY-MM-DD
	ProjectID string
}

// MarkRequest contains parameters for an explicit mark.
type MarkRequest struct {
	Day       string // YYYY-MM-DD
	ProjectID string
	State     string  // full, half, absent, custom
	Hours     float64 // only for custom
}

// CellState is the read model of one calendar cell.
type CellState struct {
	WorkerID    string
	ProjectID   string
	Day         string
	IsAssigned  bool
	Marked      bool   // false means no record exists
	Status      string // empty when unmarked
	IsPresent   bool
	IsHalfDay   bool
	HoursWorked float64
	RecordID    string
}

// MonthFilter selects a month and optionally a project.
type MonthFilter struct {
	Month     string // YYYY-MM; empty means the current month
	ProjectID string // empty means all projects
}

// MonthlySummary is the per-month tally at the port boundary.
type MonthlySummary struct {
	WorkerID   string
	Month      string
	ProjectID  string
	Present    int
	FullDay    int // Present excluding custom-hour days
	Custom     int
	HalfDay    int
	Absent     int
	TotalHours float64
}

// ProjectAssignment is one row of the worker's project list.
type ProjectAssignment struct {
	ProjectID   string
	ProjectName string
	FirstDate   string // empty when unknown
	LastDate    string // empty when unknown
	DaysWorked  int
	TotalHours  float64
}

// SessionProvider hands out one AttendanceService per worker, with the
// worker already selected. Servers that handle many workers use it.
type SessionProvider interface {
	// Session returns the worker's service, loading it on first use.
	Session(ctx context.Context, workerID string) (AttendanceService, error)

	// Refresh reloads the worker's scope from the stores.
	Refresh(ctx context.Context, workerID string) (*WorkerScope, error)
}
