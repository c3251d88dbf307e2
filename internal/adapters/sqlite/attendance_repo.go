package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/rollcall/internal/ports/secondary"
)

// AttendanceRepository implements secondary.AttendanceRepository with SQLite.
type AttendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, worker_id, project_id, date, status, is_present, is_half_day, hours_worked, created_at, updated_at"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(s scanner) (*secondary.AttendanceRecord, error) {
	var (
		isPresent sql.NullBool
		isHalfDay sql.NullBool
		hours     sql.NullFloat64
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.AttendanceRecord{}
	err := s.Scan(&record.ID, &record.WorkerID, &record.ProjectID, &record.Date, &record.Status,
		&isPresent, &isHalfDay, &hours, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if isPresent.Valid {
		record.IsPresent = &isPresent.Bool
	}
	if isHalfDay.Valid {
		record.IsHalfDay = &isHalfDay.Bool
	}
	if hours.Valid {
		record.HoursWorked = &hours.Float64
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// QueryByWorker retrieves every attendance row of a worker, oldest first.
func (r *AttendanceRepository) QueryByWorker(ctx context.Context, workerID string) ([]*secondary.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE worker_id = ? ORDER BY date ASC, project_id ASC",
		workerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []*secondary.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetByID retrieves one attendance row.
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*secondary.AttendanceRecord, error) {
	record, err := scanAttendance(r.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attendance %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return record, nil
}

// Insert persists a new row. An empty ID is replaced with a generated UUID.
func (r *AttendanceRepository) Insert(ctx context.Context, record *secondary.AttendanceRecord) (*secondary.AttendanceRecord, error) {
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance (id, worker_id, project_id, date, status, is_present, is_half_day, hours_worked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, record.WorkerID, record.ProjectID, record.Date, record.Status,
		nullBool(record.IsPresent), nullBool(record.IsHalfDay), nullFloat(record.HoursWorked),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert attendance: %w", err)
	}

	return r.GetByID(ctx, id)
}

// UpdateByID applies patch to an existing row.
func (r *AttendanceRepository) UpdateByID(ctx context.Context, id string, patch secondary.AttendancePatch) (*secondary.AttendanceRecord, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendance
		SET status = ?, is_present = ?, is_half_day = ?, hours_worked = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		patch.Status, patch.IsPresent, patch.IsHalfDay, patch.HoursWorked, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("attendance %s: %w", id, secondary.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// DeleteByID removes a row. A missing row is not an error.
func (r *AttendanceRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Ensure AttendanceRepository implements the interface.
var _ secondary.AttendanceRepository = (*AttendanceRepository)(nil)
