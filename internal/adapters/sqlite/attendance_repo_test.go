package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/rollcall/internal/adapters/sqlite"
	"github.com/example/rollcall/internal/ports/secondary"
)

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestAttendanceRepository_InsertGeneratesID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAttendanceRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "")

	rec, err := repo.Insert(ctx, &secondary.AttendanceRecord{
		WorkerID:    "W-001",
		ProjectID:   "P-001",
		Date:        "2025-01-15",
		IsPresent:   boolPtr(true),
		IsHalfDay:   boolPtr(false),
		HoursWorked: floatPtr(8),
		Status:      "Present",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(rec.ID) != 36 {
		t.Errorf("expected a UUID, got %q", rec.ID)
	}
	if rec.IsPresent == nil || !*rec.IsPresent || rec.HoursWorked == nil || *rec.HoursWorked != 8 {
		t.Errorf("unexpected stored row %+v", rec)
	}
	if rec.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}
}

func TestAttendanceRepository_InsertRejectsDuplicateTriple(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAttendanceRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "")

	row := &secondary.AttendanceRecord{WorkerID: "W-001", ProjectID: "P-001", Date: "2025-01-15", Status: "Absent"}
	if _, err := repo.Insert(ctx, row); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, row); err == nil {
		t.Error("expected unique index violation on second insert")
	}
}

func TestAttendanceRepository_QueryByWorkerKeepsLegacyNulls(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAttendanceRepository(db)
	seedWorker(t, db, "W-001", "")
	seedWorker(t, db, "W-002", "")
	seedLegacyAttendance(t, db, "A-2", "W-001", "P-001", "2025-01-16", "half day")
	seedLegacyAttendance(t, db, "A-1", "W-001", "P-001", "2025-01-15", "present")
	seedLegacyAttendance(t, db, "A-3", "W-002", "P-001", "2025-01-15", "absent")

	rows, err := repo.QueryByWorker(context.Background(), "W-001")
	if err != nil {
		t.Fatalf("QueryByWorker failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "A-1" {
		t.Fatalf("expected two rows oldest first, got %+v", rows)
	}
	if rows[0].IsPresent != nil || rows[0].IsHalfDay != nil || rows[0].HoursWorked != nil {
		t.Errorf("expected NULL structured fields, got %+v", rows[0])
	}
	if rows[0].Status != "present" {
		t.Errorf("expected raw status, got %q", rows[0].Status)
	}
}

func TestAttendanceRepository_UpdateByID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAttendanceRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "")
	seedLegacyAttendance(t, db, "A-1", "W-001", "P-001", "2025-01-15", "present")

	rec, err := repo.UpdateByID(ctx, "A-1", secondary.AttendancePatch{
		IsPresent: true, IsHalfDay: true, HoursWorked: 4, Status: "Half Day",
	})
	if err != nil {
		t.Fatalf("UpdateByID failed: %v", err)
	}
	if rec.Status != "Half Day" || rec.IsHalfDay == nil || !*rec.IsHalfDay || *rec.HoursWorked != 4 {
		t.Errorf("unexpected updated row %+v", rec)
	}

	_, err = repo.UpdateByID(ctx, "A-404", secondary.AttendancePatch{Status: "Absent"})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAttendanceRepository_DeleteByID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAttendanceRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "")
	seedLegacyAttendance(t, db, "A-1", "W-001", "P-001", "2025-01-15", "present")

	if err := repo.DeleteByID(ctx, "A-1"); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if err := repo.DeleteByID(ctx, "A-1"); err != nil {
		t.Errorf("expected deleting a missing row to succeed, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "A-1"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected row gone, got %v", err)
	}
}
