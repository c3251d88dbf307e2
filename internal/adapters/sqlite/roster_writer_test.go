package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/rollcall/internal/adapters/sqlite"
	"github.com/example/rollcall/internal/ports/secondary"
)

func TestRosterWriter_UpsertWorkerAndProject(t *testing.T) {
	db := setupTestDB(t)
	writer := sqlite.NewRosterWriter(db)
	workers := sqlite.NewWorkerRepository(db)
	projects := sqlite.NewProjectRepository(db)
	ctx := context.Background()

	if err := writer.UpsertWorker(ctx, &secondary.WorkerRecord{ID: "W-001", FullName: "Ada"}); err != nil {
		t.Fatalf("UpsertWorker failed: %v", err)
	}
	if err := writer.UpsertWorker(ctx, &secondary.WorkerRecord{ID: "W-001", FullName: "Ada Lovelace"}); err != nil {
		t.Fatalf("second UpsertWorker failed: %v", err)
	}
	w, err := workers.GetByID(ctx, "W-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if w.FullName != "Ada Lovelace" {
		t.Errorf("expected rename, got %q", w.FullName)
	}

	if err := writer.UpsertProject(ctx, &secondary.ProjectRecord{ID: "P-001", Name: "Bridge"}); err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}
	if err := writer.UpsertProject(ctx, &secondary.ProjectRecord{ID: "P-001", Name: "Bridge", Status: "completed"}); err != nil {
		t.Fatalf("second UpsertProject failed: %v", err)
	}
	p, err := projects.GetByID(ctx, "P-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if p.Status != "completed" {
		t.Errorf("expected status 'completed', got %q", p.Status)
	}
}

func TestRosterWriter_ReplaceAssignments(t *testing.T) {
	db := setupTestDB(t)
	writer := sqlite.NewRosterWriter(db)
	repo := sqlite.NewAssignmentRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "")
	seedProject(t, db, "P-001", "")
	seedProject(t, db, "P-002", "")
	seedAssignment(t, db, "OLD", "W-001", "P-001", "", "")

	err := writer.ReplaceAssignments(ctx, "W-001", []*secondary.AssignmentRecord{
		{ProjectID: "P-001", AssignedFrom: "2025-01-01", AssignedTo: "2025-01-31"},
		{ProjectID: "P-002"},
	})
	if err != nil {
		t.Fatalf("ReplaceAssignments failed: %v", err)
	}

	rows, err := repo.ListByWorker(ctx, "W-001")
	if err != nil {
		t.Fatalf("ListByWorker failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.ID == "OLD" {
			t.Error("expected old window to be replaced")
		}
		if r.ProjectID == "P-002" && (r.AssignedFrom != "" || r.AssignedTo != "") {
			t.Errorf("expected open window for P-002, got %+v", r)
		}
	}
}
