package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/rollcall/internal/adapters/sqlite"
	"github.com/example/rollcall/internal/ports/secondary"
)

func TestWorkerRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewWorkerRepository(db)
	ctx := context.Background()
	seedWorker(t, db, "W-001", "Ada Lovelace")

	worker, err := repo.GetByID(ctx, "W-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if worker.FullName != "Ada Lovelace" {
		t.Errorf("expected 'Ada Lovelace', got %q", worker.FullName)
	}

	_, err = repo.GetByID(ctx, "W-999")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWorkerRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewWorkerRepository(db)
	seedWorker(t, db, "W-002", "Grace Hopper")
	seedWorker(t, db, "W-001", "Ada Lovelace")

	workers, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(workers) != 2 || workers[0].ID != "W-001" {
		t.Errorf("expected workers ordered by name, got %+v", workers)
	}
}

func TestProjectRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewProjectRepository(db)
	ctx := context.Background()
	seedProject(t, db, "P-001", "Harbour Bridge")

	project, err := repo.GetByID(ctx, "P-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if project.Name != "Harbour Bridge" || project.Status != "ongoing" {
		t.Errorf("unexpected project %+v", project)
	}

	if _, err := repo.GetByID(ctx, "P-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	projects, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("expected 1 project, got %d", len(projects))
	}
}

func TestAssignmentRepository_ListByWorker(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAssignmentRepository(db)
	seedWorker(t, db, "W-001", "")
	seedWorker(t, db, "W-002", "Other")
	seedProject(t, db, "P-001", "")
	seedAssignment(t, db, "A-1", "W-001", "P-001", "2025-01-01", "")
	seedAssignment(t, db, "A-2", "W-001", "P-001", "", "2024-06-30")
	seedAssignment(t, db, "A-3", "W-002", "P-001", "", "")

	rows, err := repo.ListByWorker(context.Background(), "W-001")
	if err != nil {
		t.Fatalf("ListByWorker failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(rows))
	}
	// NULL sorts first.
	if rows[0].ID != "A-2" || rows[0].AssignedFrom != "" || rows[0].AssignedTo != "2024-06-30" {
		t.Errorf("unexpected first window %+v", rows[0])
	}
	if rows[1].AssignedFrom != "2025-01-01" || rows[1].AssignedTo != "" {
		t.Errorf("expected open-ended second window, got %+v", rows[1])
	}
}
