package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/rollcall/internal/ports/secondary"
)

// newDryRunDB builds a postgres dialect handle that renders SQL without
// ever opening a connection.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=rollcall dbname=rollcall sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to build dry-run db: %v", err)
	}
	return db
}

func assertSQL(t *testing.T, sql string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(sql, f) {
			t.Errorf("expected SQL to contain %q\ngot: %s", f, sql)
		}
	}
}

func TestQueryScopes(t *testing.T) {
	db := newDryRunDB(t)

	tests := []struct {
		name  string
		query func(tx *gorm.DB) *gorm.DB
		want  []string
	}{
		{
			name: "attendance of worker",
			query: func(tx *gorm.DB) *gorm.DB {
				var models []AttendanceModel
				return tx.Scopes(attendanceOf("W-001")).Find(&models)
			},
			want: []string{`FROM "attendance"`, `worker_id = 'W-001'`, "ORDER BY date ASC, project_id ASC"},
		},
		{
			name: "assignments of worker",
			query: func(tx *gorm.DB) *gorm.DB {
				var models []AssignmentModel
				return tx.Scopes(assignmentsOf("W-001")).Find(&models)
			},
			want: []string{`FROM "assignments"`, `worker_id = 'W-001'`, "ORDER BY project_id ASC, assigned_from ASC NULLS FIRST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSQL(t, db.ToSQL(tt.query), tt.want...)
		})
	}
}

func TestAttendanceUpdates(t *testing.T) {
	db := newDryRunDB(t)
	id := uuid.New()

	tests := []struct {
		name  string
		patch secondary.AttendancePatch
		want  []string
	}{
		{
			name:  "custom hours",
			patch: secondary.AttendancePatch{IsPresent: true, HoursWorked: 7.5, Status: "7.5 h"},
			want:  []string{`"is_present"=true`, `"is_half_day"=false`, `"hours_worked"=7.5`, `"status"='7.5 h'`},
		},
		{
			// Zero values must still be written so an absent mark clears presence.
			name:  "absent",
			patch: secondary.AttendancePatch{Status: "Absent"},
			want:  []string{`"is_present"=false`, `"is_half_day"=false`, `"hours_worked"=0`, `"status"='Absent'`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				return tx.Model(&AttendanceModel{}).Where("id = ?", id).Updates(attendanceUpdates(tt.patch))
			})
			want := append([]string{`UPDATE "attendance" SET`, "WHERE id = '" + id.String() + "'"}, tt.want...)
			assertSQL(t, sql, want...)
		})
	}
}

func TestUpsertByID(t *testing.T) {
	db := newDryRunDB(t)

	workerSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Clauses(upsertByID("full_name", "updated_at")).Create(&WorkerModel{ID: "W-001", FullName: "Asha Rao"})
	})
	assertSQL(t, workerSQL,
		`INSERT INTO "workers"`,
		`ON CONFLICT ("id") DO UPDATE SET "full_name"="excluded"."full_name","updated_at"="excluded"."updated_at"`,
	)
	if strings.Contains(workerSQL, `"created_at"="excluded"`) {
		t.Errorf("upsert must keep created_at, got: %s", workerSQL)
	}

	projectSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Clauses(upsertByID("name", "status", "updated_at")).Create(&ProjectModel{ID: "P-001", Name: "Tower", Status: "ongoing"})
	})
	assertSQL(t, projectSQL,
		`INSERT INTO "projects"`,
		`"name"="excluded"."name","status"="excluded"."status"`,
	)
}

func TestAttendanceRepository_InvalidIDs(t *testing.T) {
	repo := NewAttendanceRepository(newDryRunDB(t))
	ctx := context.Background()

	if _, err := repo.UpdateByID(ctx, "ATT-1", secondary.AttendancePatch{}); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-UUID id, got %v", err)
	}
	if err := repo.DeleteByID(ctx, "ATT-1"); err != nil {
		t.Errorf("expected delete of non-UUID id to be a no-op, got %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.AttendanceRecord{WorkerID: "W", ProjectID: "P", Date: "yesterday"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

// TestRepositories_Postgres runs the repositories against a disposable
// database named by ROLLCALL_TEST_POSTGRES_DSN.
func TestRepositories_Postgres(t *testing.T) {
	dsn := os.Getenv("ROLLCALL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ROLLCALL_TEST_POSTGRES_DSN not set")
	}

	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	ctx := context.Background()
	workerID := "W-" + uuid.NewString()[:8]
	projectID := "P-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Where("worker_id = ?", workerID).Delete(&AttendanceModel{})
		db.Where("worker_id = ?", workerID).Delete(&AssignmentModel{})
		db.Delete(&WorkerModel{}, "id = ?", workerID)
		db.Delete(&ProjectModel{}, "id = ?", projectID)
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	roster := NewRosterWriter(db)
	if err := roster.UpsertWorker(ctx, &secondary.WorkerRecord{ID: workerID, FullName: "Asha"}); err != nil {
		t.Fatalf("UpsertWorker: %v", err)
	}
	if err := roster.UpsertWorker(ctx, &secondary.WorkerRecord{ID: workerID, FullName: "Asha Rao"}); err != nil {
		t.Fatalf("UpsertWorker rename: %v", err)
	}
	if err := roster.UpsertProject(ctx, &secondary.ProjectRecord{ID: projectID, Name: "Tower"}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}
	if err := roster.ReplaceAssignments(ctx, workerID, []*secondary.AssignmentRecord{
		{ProjectID: projectID, AssignedFrom: "2025-01-01"},
	}); err != nil {
		t.Fatalf("ReplaceAssignments: %v", err)
	}

	worker, err := NewWorkerRepository(db).GetByID(ctx, workerID)
	if err != nil || worker.FullName != "Asha Rao" {
		t.Fatalf("expected renamed worker, got %+v, %v", worker, err)
	}
	windows, err := NewAssignmentRepository(db).ListByWorker(ctx, workerID)
	if err != nil || len(windows) != 1 || windows[0].AssignedFrom != "2025-01-01" || windows[0].AssignedTo != "" {
		t.Fatalf("unexpected assignments %+v, %v", windows, err)
	}

	repo := NewAttendanceRepository(db)
	present, half, hours := true, false, 7.25
	inserted, err := repo.Insert(ctx, &secondary.AttendanceRecord{
		WorkerID: workerID, ProjectID: projectID, Date: "2025-01-15",
		IsPresent: &present, IsHalfDay: &half, HoursWorked: &hours, Status: "7.25 h",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.AttendanceRecord{WorkerID: workerID, ProjectID: projectID, Date: "2025-01-15"}); err == nil {
		t.Error("expected duplicate triple to be rejected")
	}

	updated, err := repo.UpdateByID(ctx, inserted.ID, secondary.AttendancePatch{IsPresent: true, IsHalfDay: true, HoursWorked: 4, Status: "Half Day"})
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if updated.IsHalfDay == nil || !*updated.IsHalfDay || updated.HoursWorked == nil || *updated.HoursWorked != 4 {
		t.Errorf("unexpected updated row %+v", updated)
	}

	rows, err := repo.QueryByWorker(ctx, workerID)
	if err != nil || len(rows) != 1 || rows[0].Status != "Half Day" {
		t.Fatalf("unexpected rows %+v, %v", rows, err)
	}

	if err := repo.DeleteByID(ctx, inserted.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err := repo.UpdateByID(ctx, inserted.ID, secondary.AttendancePatch{}); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
