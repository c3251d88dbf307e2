// Package postgres contains gorm/PostgreSQL implementations of repository interfaces.
package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/example/rollcall/internal/core/calendar"
	"github.com/example/rollcall/internal/ports/secondary"
)

type WorkerModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (WorkerModel) TableName() string {
	return "workers"
}

type ProjectModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Status    string    `gorm:"column:status;not null;default:ongoing"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

type AssignmentModel struct {
	ID           string          `gorm:"column:id;primaryKey"`
	WorkerID     string          `gorm:"column:worker_id;not null;index:idx_assignments_worker"`
	ProjectID    string          `gorm:"column:project_id;not null"`
	AssignedFrom *datatypes.Date `gorm:"column:assigned_from"`
	AssignedTo   *datatypes.Date `gorm:"column:assigned_to"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (AssignmentModel) TableName() string {
	return "assignments"
}

// AttendanceModel mirrors the attendance table. The structured columns are
// nullable because rows written before they existed carry only Status.
type AttendanceModel struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	WorkerID    string         `gorm:"column:worker_id;not null;uniqueIndex:idx_attendance_triple,priority:1"`
	Date        datatypes.Date `gorm:"column:date;not null;uniqueIndex:idx_attendance_triple,priority:2"`
	ProjectID   string         `gorm:"column:project_id;not null;uniqueIndex:idx_attendance_triple,priority:3"`
	Status      string         `gorm:"column:status;not null;default:''"`
	IsPresent   *bool          `gorm:"column:is_present"`
	IsHalfDay   *bool          `gorm:"column:is_half_day"`
	HoursWorked *float64       `gorm:"column:hours_worked;type:numeric(5,2)"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (AttendanceModel) TableName() string {
	return "attendance"
}

// Models lists every model in migration order.
func Models() []any {
	return []any{&WorkerModel{}, &ProjectModel{}, &AssignmentModel{}, &AttendanceModel{}}
}

func formatDate(d datatypes.Date) string {
	return calendar.FormatDay(time.Time(d))
}

func formatOptionalDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return formatDate(*d)
}

func parseDate(s string) (datatypes.Date, error) {
	t, err := calendar.ParseDay(s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

func parseOptionalDate(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *AttendanceModel) toRecord() *secondary.AttendanceRecord {
	return &secondary.AttendanceRecord{
		ID:          m.ID.String(),
		WorkerID:    m.WorkerID,
		ProjectID:   m.ProjectID,
		Date:        formatDate(m.Date),
		IsPresent:   m.IsPresent,
		IsHalfDay:   m.IsHalfDay,
		HoursWorked: m.HoursWorked,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

func (m *AssignmentModel) toRecord() *secondary.AssignmentRecord {
	return &secondary.AssignmentRecord{
		ID:           m.ID,
		WorkerID:     m.WorkerID,
		ProjectID:    m.ProjectID,
		AssignedFrom: formatOptionalDate(m.AssignedFrom),
		AssignedTo:   formatOptionalDate(m.AssignedTo),
	}
}
