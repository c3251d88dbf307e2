package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/rollcall/internal/core/attendance"
	"github.com/example/rollcall/internal/ports/primary"
)

// AttendanceAdapter is a thin adapter that translates CLI operations to AttendanceService calls.
// It depends only on the AttendanceService interface, enabling easy testing with mocks.
type AttendanceAdapter struct {
	service primary.AttendanceService
	out     io.Writer
}

// NewAttendanceAdapter creates a new AttendanceAdapter with the given service.
func NewAttendanceAdapter(service primary.AttendanceService, out io.Writer) *AttendanceAdapter {
	return &AttendanceAdapter{
		service: service,
		out:     out,
	}
}

// Select loads a worker and prints what was loaded.
func (a *AttendanceAdapter) Select(ctx context.Context, workerID string) (*primary.WorkerScope, error) {
	scope, err := a.service.SelectWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select worker: %w", err)
	}

	fmt.Fprintf(a.out, "Worker: %s (%s)\n", scope.WorkerID, scope.FullName)
	fmt.Fprintf(a.out, "  %d assignment window(s), %d attendance record(s)\n", scope.Assignments, scope.Records)
	return scope, nil
}

// Mark writes an explicit state and prints the resulting cell.
func (a *AttendanceAdapter) Mark(ctx context.Context, req primary.MarkRequest) (*primary.CellState, error) {
	cell, err := a.service.Mark(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Marked %s on %s %s: %s\n", cell.WorkerID, cell.ProjectID, cell.Day, statusText(cell))
	return cell, nil
}

// Toggle advances a cell along the cycle and prints the result.
func (a *AttendanceAdapter) Toggle(ctx context.Context, req primary.CellRequest) (*primary.CellState, error) {
	cell, err := a.service.Toggle(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle attendance: %w", err)
	}

	fmt.Fprintf(a.out, "✓ %s on %s %s is now %s\n", cell.WorkerID, cell.ProjectID, cell.Day, statusText(cell))
	return cell, nil
}

// Clear removes a cell's record.
func (a *AttendanceAdapter) Clear(ctx context.Context, req primary.CellRequest) error {
	if err := a.service.ClearMark(ctx, req); err != nil {
		return fmt.Errorf("failed to clear attendance: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Cleared %s %s\n", req.ProjectID, req.Day)
	return nil
}

// Cell displays one calendar cell.
func (a *AttendanceAdapter) Cell(ctx context.Context, req primary.CellRequest) (*primary.CellState, error) {
	cell, err := a.service.GetCellState(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get cell: %w", err)
	}

	fmt.Fprintf(a.out, "\nCell: %s %s\n", cell.ProjectID, cell.Day)
	fmt.Fprintf(a.out, "Worker:   %s\n", cell.WorkerID)
	if cell.IsAssigned {
		fmt.Fprintf(a.out, "Assigned: %s\n", "yes")
	} else {
		fmt.Fprintf(a.out, "Assigned: %s\n", color.New(color.FgRed).Sprint("no"))
	}
	fmt.Fprintf(a.out, "Status:   %s\n", statusText(cell))
	if cell.RecordID != "" {
		fmt.Fprintf(a.out, "Record:   %s\n", cell.RecordID)
	}
	fmt.Fprintln(a.out)

	return cell, nil
}

// Summary prints the monthly tally.
func (a *AttendanceAdapter) Summary(ctx context.Context, filter primary.MonthFilter) (*primary.MonthlySummary, error) {
	sum, err := a.service.GetMonthlySummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	scope := "all projects"
	if sum.ProjectID != "" {
		scope = sum.ProjectID
	}
	fmt.Fprintf(a.out, "\nSummary: %s, %s (%s)\n", sum.WorkerID, sum.Month, scope)
	fmt.Fprintf(a.out, "Present:  %d", sum.Present)
	if sum.Custom > 0 {
		fmt.Fprintf(a.out, " (%d full day, %d with custom hours)", sum.FullDay, sum.Custom)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Half day: %d\n", sum.HalfDay)
	fmt.Fprintf(a.out, "Absent:   %d\n", sum.Absent)
	fmt.Fprintf(a.out, "Hours:    %s\n", formatHours(sum.TotalHours))
	fmt.Fprintln(a.out)

	return sum, nil
}

// Projects lists the worker's projects by recent activity.
func (a *AttendanceAdapter) Projects(ctx context.Context) ([]*primary.ProjectAssignment, error) {
	rows, err := a.service.GetProjectAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No projects found.")
		return rows, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFROM\tTO\tDAYS\tHOURS")
	fmt.Fprintln(w, "--\t----\t----\t--\t----\t-----")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ProjectID,
			r.ProjectName,
			orDash(r.FirstDate),
			orDash(r.LastDate),
			r.DaysWorked,
			formatHours(r.TotalHours),
		)
	}
	w.Flush()

	return rows, nil
}

// Marks lists the records of a month.
func (a *AttendanceAdapter) Marks(ctx context.Context, filter primary.MonthFilter) ([]*primary.CellState, error) {
	cells, err := a.service.ListMarks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}

	if len(cells) == 0 {
		fmt.Fprintln(a.out, "No attendance recorded.")
		return cells, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DAY\tPROJECT\tSTATUS\tHOURS")
	fmt.Fprintln(w, "---\t-------\t------\t-----")
	for _, c := range cells {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Day, c.ProjectID, statusText(c), formatHours(c.HoursWorked))
	}
	w.Flush()

	return cells, nil
}

// statusText renders the cell label with its colour. Unmarked cells show a dash.
func statusText(cell *primary.CellState) string {
	if !cell.Marked {
		return "-"
	}
	switch {
	case !cell.IsPresent:
		return color.New(color.FgRed).Sprint(cell.Status)
	case cell.IsHalfDay:
		return color.New(color.FgYellow).Sprint(cell.Status)
	case cell.Status == attendance.LabelPresent:
		return color.New(color.FgGreen).Sprint(cell.Status)
	default:
		return color.New(color.FgCyan).Sprint(cell.Status)
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
