package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/rollcall/internal/ports/secondary"
)

// WorkerRepository implements secondary.WorkerRepository with gorm.
type WorkerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new gorm worker repository.
func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// GetByID retrieves a worker by its ID.
func (r *WorkerRepository) GetByID(ctx context.Context, id string) (*secondary.WorkerRecord, error) {
	var m WorkerModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("worker %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &secondary.WorkerRecord{ID: m.ID, FullName: m.FullName}, nil
}

// List retrieves all workers ordered by name.
func (r *WorkerRepository) List(ctx context.Context) ([]*secondary.WorkerRecord, error) {
	var models []WorkerModel
	if err := r.db.WithContext(ctx).Order("full_name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	out := make([]*secondary.WorkerRecord, len(models))
	for i, m := range models {
		out[i] = &secondary.WorkerRecord{ID: m.ID, FullName: m.FullName}
	}
	return out, nil
}

// ProjectRepository implements secondary.ProjectRepository with gorm.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new gorm project repository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	var m ProjectModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &secondary.ProjectRecord{ID: m.ID, Name: m.Name, Status: m.Status}, nil
}

// List retrieves all projects ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	var models []ProjectModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]*secondary.ProjectRecord, len(models))
	for i, m := range models {
		out[i] = &secondary.ProjectRecord{ID: m.ID, Name: m.Name, Status: m.Status}
	}
	return out, nil
}

// AssignmentRepository implements secondary.AssignmentRepository with gorm.
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new gorm assignment repository.
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByWorker retrieves every assignment window of a worker.
func (r *AssignmentRepository) ListByWorker(ctx context.Context, workerID string) ([]*secondary.AssignmentRecord, error) {
	var models []AssignmentModel
	err := r.db.WithContext(ctx).Scopes(assignmentsOf(workerID)).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	out := make([]*secondary.AssignmentRecord, len(models))
	for i := range models {
		out[i] = models[i].toRecord()
	}
	return out, nil
}

// AttendanceRepository implements secondary.AttendanceRepository with gorm.
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new gorm attendance repository.
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// QueryByWorker retrieves every attendance row of a worker, oldest first.
func (r *AttendanceRepository) QueryByWorker(ctx context.Context, workerID string) ([]*secondary.AttendanceRecord, error) {
	var models []AttendanceModel
	err := r.db.WithContext(ctx).Scopes(attendanceOf(workerID)).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	out := make([]*secondary.AttendanceRecord, len(models))
	for i := range models {
		out[i] = models[i].toRecord()
	}
	return out, nil
}

// Insert persists a new row with a generated UUID unless one is given.
func (r *AttendanceRepository) Insert(ctx context.Context, record *secondary.AttendanceRecord) (*secondary.AttendanceRecord, error) {
	m, err := newAttendanceModel(record)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return m.toRecord(), nil
}

// UpdateByID applies patch to an existing row and returns it.
func (r *AttendanceRepository) UpdateByID(ctx context.Context, id string, patch secondary.AttendancePatch) (*secondary.AttendanceRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("attendance %s: %w", id, secondary.ErrNotFound)
	}

	var m AttendanceModel
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&AttendanceModel{}).Where("id = ?", uid).Updates(attendanceUpdates(patch))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&m, "id = ?", uid).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("attendance %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}
	return m.toRecord(), nil
}

// DeleteByID removes a row. A missing row is not an error.
func (r *AttendanceRepository) DeleteByID(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&AttendanceModel{}, "id = ?", uid).Error; err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

func newAttendanceModel(record *secondary.AttendanceRecord) (*AttendanceModel, error) {
	id := uuid.New()
	if record.ID != "" {
		parsed, err := uuid.Parse(record.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid attendance id %q: %w", record.ID, err)
		}
		id = parsed
	}
	date, err := parseDate(record.Date)
	if err != nil {
		return nil, err
	}
	return &AttendanceModel{
		ID:          id,
		WorkerID:    record.WorkerID,
		ProjectID:   record.ProjectID,
		Date:        date,
		Status:      record.Status,
		IsPresent:   record.IsPresent,
		IsHalfDay:   record.IsHalfDay,
		HoursWorked: record.HoursWorked,
	}, nil
}

// RosterWriter implements secondary.RosterWriter with gorm.
type RosterWriter struct {
	db *gorm.DB
}

// NewRosterWriter creates a new gorm roster writer.
func NewRosterWriter(db *gorm.DB) *RosterWriter {
	return &RosterWriter{db: db}
}

// UpsertWorker creates a worker or renames an existing one.
func (w *RosterWriter) UpsertWorker(ctx context.Context, worker *secondary.WorkerRecord) error {
	m := WorkerModel{ID: worker.ID, FullName: worker.FullName}
	err := w.db.WithContext(ctx).Clauses(upsertByID("full_name", "updated_at")).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert worker %s: %w", worker.ID, err)
	}
	return nil
}

// UpsertProject creates a project or updates an existing one.
func (w *RosterWriter) UpsertProject(ctx context.Context, project *secondary.ProjectRecord) error {
	m := ProjectModel{ID: project.ID, Name: project.Name, Status: project.Status}
	if m.Status == "" {
		m.Status = "ongoing"
	}
	err := w.db.WithContext(ctx).Clauses(upsertByID("name", "status", "updated_at")).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", project.ID, err)
	}
	return nil
}

// ReplaceAssignments swaps every assignment window of a worker in one transaction.
func (w *RosterWriter) ReplaceAssignments(ctx context.Context, workerID string, assignments []*secondary.AssignmentRecord) error {
	models, err := newAssignmentModels(workerID, assignments)
	if err != nil {
		return err
	}

	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("worker_id = ?", workerID).Delete(&AssignmentModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
		return nil
	})
}

func newAssignmentModels(workerID string, assignments []*secondary.AssignmentRecord) ([]AssignmentModel, error) {
	models := make([]AssignmentModel, 0, len(assignments))
	for _, a := range assignments {
		from, err := parseOptionalDate(a.AssignedFrom)
		if err != nil {
			return nil, fmt.Errorf("assignment for project %s: %w", a.ProjectID, err)
		}
		to, err := parseOptionalDate(a.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("assignment for project %s: %w", a.ProjectID, err)
		}
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		models = append(models, AssignmentModel{
			ID:           id,
			WorkerID:     workerID,
			ProjectID:    a.ProjectID,
			AssignedFrom: from,
			AssignedTo:   to,
		})
	}
	return models, nil
}

func assignmentsOf(workerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("worker_id = ?", workerID).Order("project_id ASC, assigned_from ASC NULLS FIRST")
	}
}

func attendanceOf(workerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("worker_id = ?", workerID).Order("date ASC, project_id ASC")
	}
}

// attendanceUpdates writes every structured column. A map is used so false
// and zero values are not skipped the way struct updates skip them.
func attendanceUpdates(patch secondary.AttendancePatch) map[string]any {
	return map[string]any{
		"status":       patch.Status,
		"is_present":   patch.IsPresent,
		"is_half_day":  patch.IsHalfDay,
		"hours_worked": patch.HoursWorked,
	}
}

func upsertByID(columns ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

// Ensure the gorm repositories implement their interfaces.
var (
	_ secondary.WorkerRepository     = (*WorkerRepository)(nil)
	_ secondary.ProjectRepository    = (*ProjectRepository)(nil)
	_ secondary.AssignmentRepository = (*AssignmentRepository)(nil)
	_ secondary.AttendanceRepository = (*AttendanceRepository)(nil)
	_ secondary.RosterWriter         = (*RosterWriter)(nil)
)
