package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/example/rollcall/internal/adapters/sqlite"
	"github.com/example/rollcall/internal/app"
	"github.com/example/rollcall/internal/core/attendance"
	"github.com/example/rollcall/internal/ports/primary"
)

// Integration tests drive the attendance service against real SQLite repositories.

func newIntegrationService(t *testing.T) (*app.AttendanceServiceImpl, *sqlite.AttendanceRepository) {
	t.Helper()
	db := setupTestDB(t)

	seedWorker(t, db, "W-001", "Ada Lovelace")
	seedProject(t, db, "P-001", "Harbour Bridge")
	seedProject(t, db, "P-002", "North Tunnel")
	seedAssignment(t, db, "A-1", "W-001", "P-001", "2025-01-01", "2025-01-31")
	seedAssignment(t, db, "A-2", "W-001", "P-002", "2025-01-01", "")
	seedLegacyAttendance(t, db, "LEG-1", "W-001", "P-001", "2025-01-10", "6 h")

	store := sqlite.NewAttendanceRepository(db)
	svc := app.NewAttendanceService(
		sqlite.NewWorkerRepository(db),
		sqlite.NewProjectRepository(db),
		sqlite.NewAssignmentRepository(db),
		store,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	if _, err := svc.SelectWorker(context.Background(), "W-001"); err != nil {
		t.Fatalf("SelectWorker failed: %v", err)
	}
	return svc, store
}

func TestIntegration_MarkToggleClear(t *testing.T) {
	svc, store := newIntegrationService(t)
	ctx := context.Background()
	cell := primary.CellRequest{Day: "2025-01-15", ProjectID: "P-001"}

	got, err := svc.Toggle(ctx, cell)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	id := got.RecordID

	got, err = svc.Toggle(ctx, cell)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if got.Status != attendance.LabelHalfDay || got.RecordID != id {
		t.Errorf("expected Half Day on the same row, got %+v", got)
	}

	rows, err := store.QueryByWorker(ctx, "W-001")
	if err != nil {
		t.Fatalf("QueryByWorker failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected legacy row plus one new row, got %d", len(rows))
	}

	if err := svc.ClearMark(ctx, cell); err != nil {
		t.Fatalf("ClearMark failed: %v", err)
	}
	rows, _ = store.QueryByWorker(ctx, "W-001")
	if len(rows) != 1 {
		t.Errorf("expected only the legacy row to remain, got %d", len(rows))
	}
}

func TestIntegration_DoubleBookingAcrossProjects(t *testing.T) {
	svc, _ := newIntegrationService(t)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, primary.MarkRequest{Day: "2025-01-15", ProjectID: "P-002", State: "half"}); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	_, err := svc.Mark(ctx, primary.MarkRequest{Day: "2025-01-15", ProjectID: "P-001", State: "full"})
	if !errors.Is(err, attendance.ErrDoubleBooked) {
		t.Errorf("expected ErrDoubleBooked, got %v", err)
	}
}

func TestIntegration_LegacyRowIsUpgradedOnWrite(t *testing.T) {
	svc, store := newIntegrationService(t)
	ctx := context.Background()

	cell, err := svc.GetCellState(ctx, primary.CellRequest{Day: "2025-01-10", ProjectID: "P-001"})
	if err != nil {
		t.Fatalf("GetCellState failed: %v", err)
	}
	if cell.HoursWorked != 6 || cell.Status != "6 h" || !cell.IsPresent {
		t.Errorf("expected legacy '6 h' normalized, got %+v", cell)
	}

	if _, err := svc.Toggle(ctx, primary.CellRequest{Day: "2025-01-10", ProjectID: "P-001"}); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	row, err := store.GetByID(ctx, "LEG-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if row.IsHalfDay == nil || !*row.IsHalfDay || row.Status != attendance.LabelHalfDay {
		t.Errorf("expected structured Half Day row, got %+v", row)
	}
}

func TestIntegration_Summaries(t *testing.T) {
	svc, _ := newIntegrationService(t)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, primary.MarkRequest{Day: "2025-01-15", ProjectID: "P-002", State: "full"}); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	sum, err := svc.GetMonthlySummary(ctx, primary.MonthFilter{Month: "2025-01"})
	if err != nil {
		t.Fatalf("GetMonthlySummary failed: %v", err)
	}
	if sum.Present != 2 || sum.Custom != 1 || sum.TotalHours != 14 {
		t.Errorf("unexpected summary %+v", sum)
	}

	projects, err := svc.GetProjectAssignments(ctx)
	if err != nil {
		t.Fatalf("GetProjectAssignments failed: %v", err)
	}
	if len(projects) != 2 || projects[0].ProjectID != "P-001" {
		t.Fatalf("expected P-001 (bounded to 2025-01-31) first, got %+v", projects)
	}
	if projects[1].ProjectName != "North Tunnel" || projects[1].LastDate != "2025-01-15" {
		t.Errorf("expected P-002 last date from attendance, got %+v", projects[1])
	}
}
