package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/rollcall/internal/core/assignment"
	"github.com/example/rollcall/internal/core/attendance"
	"github.com/example/rollcall/internal/core/calendar"
	"github.com/example/rollcall/internal/core/summary"
	"github.com/example/rollcall/internal/ctxutil"
	"github.com/example/rollcall/internal/ports/primary"
	"github.com/example/rollcall/internal/ports/secondary"
)

// projectLookupLimit bounds concurrent project directory lookups during SelectWorker.
const projectLookupLimit = 8

// AttendanceServiceImpl implements the AttendanceService interface.
// It applies every write to the mirror first, persists it remotely, and
// restores the mirror from a snapshot when the remote write fails.
type AttendanceServiceImpl struct {
	workerRepo     secondary.WorkerRepository
	projectRepo    secondary.ProjectRepository
	assignmentRepo secondary.AssignmentRepository
	attendanceRepo secondary.AttendanceRepository
	logger         *slog.Logger
	now            func() time.Time

	ledger *Ledger
	locks  *cellLocks

	// writes is held shared by every mark or clear from guard to remote
	// commit, and exclusively by SelectWorker, so a reload never replaces
	// the mirror under a write that has not resolved yet.
	writes sync.RWMutex

	mu          sync.RWMutex
	worker      *secondary.WorkerRecord
	index       *assignment.Index
	assignments int
	names       map[string]string
}

// NewAttendanceService creates a new AttendanceService with injected dependencies.
func NewAttendanceService(
	workerRepo secondary.WorkerRepository,
	projectRepo secondary.ProjectRepository,
	assignmentRepo secondary.AssignmentRepository,
	attendanceRepo secondary.AttendanceRepository,
	logger *slog.Logger,
) *AttendanceServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		workerRepo:     workerRepo,
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		attendanceRepo: attendanceRepo,
		logger:         logger,
		now:            time.Now,
		ledger:         NewLedger(),
		locks:          newCellLocks(),
	}
}

// scope is an immutable view of the selected worker's directory data.
type scope struct {
	workerID string
	index    *assignment.Index
	names    map[string]string
}

func (s *AttendanceServiceImpl) currentScope() (scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.worker == nil {
		return scope{}, attendance.ErrNoWorkerSelected
	}
	return scope{workerID: s.worker.ID, index: s.index, names: s.names}, nil
}

// SelectWorker loads the worker's assignments and attendance and replaces the mirror.
func (s *AttendanceServiceImpl) SelectWorker(ctx context.Context, workerID string) (*primary.WorkerScope, error) {
	worker, err := s.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", attendance.ErrWorkerNotFound, err)
		}
		return nil, fmt.Errorf("failed to select worker: %w", err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	var (
		assignmentRows []*secondary.AssignmentRecord
		attendanceRows []*secondary.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.assignmentRepo.ListByWorker(gctx, workerID)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		assignmentRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.attendanceRepo.QueryByWorker(gctx, workerID)
		if err != nil {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		attendanceRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assignments := make([]assignment.Assignment, 0, len(assignmentRows))
	projectIDs := make(map[string]struct{})
	for _, row := range assignmentRows {
		a, err := recordToAssignment(row)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
		projectIDs[a.ProjectID] = struct{}{}
	}

	records := make([]attendance.Record, 0, len(attendanceRows))
	for _, row := range attendanceRows {
		rec, err := recordToAttendance(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		projectIDs[rec.ProjectID] = struct{}{}
	}

	names := s.lookupProjectNames(ctx, projectIDs)

	s.mu.Lock()
	s.worker = worker
	s.index = assignment.NewIndex(assignments)
	s.assignments = len(assignments)
	s.names = names
	s.ledger.Replace(worker.ID, records)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "worker selected",
		"worker", worker.ID,
		"assignments", len(assignments),
		"records", len(records),
		"actor", ctxutil.ActorFromContext(ctx),
	)

	return &primary.WorkerScope{
		WorkerID:    worker.ID,
		FullName:    worker.FullName,
		Assignments: len(assignments),
		Records:     len(records),
	}, nil
}

// lookupProjectNames resolves display names; a failed lookup falls back to the ID.
func (s *AttendanceServiceImpl) lookupProjectNames(ctx context.Context, ids map[string]struct{}) map[string]string {
	var mu sync.Mutex
	names := make(map[string]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(projectLookupLimit)
	for id := range ids {
		g.Go(func() error {
			p, err := s.projectRepo.GetByID(gctx, id)
			if err != nil {
				if !errors.Is(err, secondary.ErrNotFound) {
					s.logger.WarnContext(ctx, "project lookup failed", "project", id, "error", err)
				}
				return nil
			}
			mu.Lock()
			names[id] = p.Name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return names
}

// Mark writes an explicit state for a cell.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, req primary.MarkRequest) (*primary.CellState, error) {
	state, err := attendance.ParseState(req.State)
	if err != nil {
		return nil, err
	}
	desired := attendance.Desired{State: state, Hours: req.Hours}
	if _, err := attendance.Apply(desired); err != nil {
		return nil, err
	}

	return s.applyMark(ctx, req.Day, req.ProjectID, func(*attendance.Record) attendance.Desired {
		return desired
	})
}

// Toggle advances a cell along the status cycle.
func (s *AttendanceServiceImpl) Toggle(ctx context.Context, req primary.CellRequest) (*primary.CellState, error) {
	return s.applyMark(ctx, req.Day, req.ProjectID, attendance.Next)
}

// applyMark is the single mutation path behind Mark and Toggle.
func (s *AttendanceServiceImpl) applyMark(ctx context.Context, dayStr, projectID string, decide func(current *attendance.Record) attendance.Desired) (*primary.CellState, error) {
	s.writes.RLock()
	defer s.writes.RUnlock()

	sc, day, err := s.resolveCell(dayStr, projectID)
	if err != nil {
		return nil, err
	}

	release := s.locks.lock(sc.workerID, calendar.FormatDay(day), projectID)
	defer release()

	// Guard, decide and mutate the mirror in one step so a concurrent write
	// to another project that day cannot slip between check and write.
	var written attendance.Record
	snap, err := s.ledger.Mutate(sc.workerID, day, projectID, func(current *attendance.Record, sameDay []attendance.Record) (*attendance.Record, error) {
		guard := attendance.CanMark(attendance.MarkContext{
			WorkerID:   sc.workerID,
			ProjectID:  projectID,
			Day:        day,
			IsAssigned: sc.index.IsDateAssigned(sc.workerID, projectID, day),
			SameDay:    sameDay,
		})
		if !guard.Allowed {
			return nil, guard.Error()
		}

		fields, err := attendance.Apply(decide(current))
		if err != nil {
			return nil, err
		}

		next := attendance.Record{WorkerID: sc.workerID, ProjectID: projectID, Date: day}
		if current != nil {
			next.ID = current.ID
		}
		written = next.WithFields(fields)
		return &written, nil
	})
	if err != nil {
		s.logger.InfoContext(ctx, "attendance mark rejected",
			"worker", sc.workerID, "project", projectID, "day", calendar.FormatDay(day),
			"reason", err.Error(), "actor", ctxutil.ActorFromContext(ctx))
		return nil, err
	}

	committed, err := s.persist(ctx, written)
	if err != nil {
		s.ledger.Restore(snap)
		s.logger.WarnContext(ctx, "attendance write failed, mirror restored",
			"worker", sc.workerID, "project", projectID, "day", calendar.FormatDay(day),
			"error", err, "actor", ctxutil.ActorFromContext(ctx))
		return nil, &attendance.MarkError{
			Kind:      attendance.ErrRemoteSync,
			WorkerID:  sc.workerID,
			ProjectID: projectID,
			Day:       day,
			Cause:     err,
		}
	}
	s.ledger.Confirm(snap, committed)

	s.logger.InfoContext(ctx, "attendance marked",
		"worker", sc.workerID, "project", projectID, "day", calendar.FormatDay(day),
		"status", written.Status, "record", committed.ID, "actor", ctxutil.ActorFromContext(ctx))

	return s.cellState(sc, day, projectID), nil
}

// persist writes rec to the remote store. A known ID is updated directly;
// otherwise the store is re-queried for the triple so a racing insert is
// updated instead of duplicated.
func (s *AttendanceServiceImpl) persist(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	patch := secondary.AttendancePatch{
		IsPresent:   rec.IsPresent,
		IsHalfDay:   rec.IsHalfDay,
		HoursWorked: rec.HoursWorked,
		Status:      rec.Status,
	}

	if rec.ID != "" {
		row, err := s.attendanceRepo.UpdateByID(ctx, rec.ID, patch)
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to update attendance %s: %w", rec.ID, err)
		}
		return recordToAttendance(row)
	}

	rows, err := s.attendanceRepo.QueryByWorker(ctx, rec.WorkerID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to re-query attendance: %w", err)
	}
	day := calendar.FormatDay(rec.Date)
	for _, row := range rows {
		if row.ProjectID == rec.ProjectID && sameDay(row.Date, day) {
			updated, err := s.attendanceRepo.UpdateByID(ctx, row.ID, patch)
			if err != nil {
				return attendance.Record{}, fmt.Errorf("failed to update attendance %s: %w", row.ID, err)
			}
			return recordToAttendance(updated)
		}
	}

	inserted, err := s.attendanceRepo.Insert(ctx, &secondary.AttendanceRecord{
		WorkerID:    rec.WorkerID,
		ProjectID:   rec.ProjectID,
		Date:        day,
		IsPresent:   &patch.IsPresent,
		IsHalfDay:   &patch.IsHalfDay,
		HoursWorked: &patch.HoursWorked,
		Status:      patch.Status,
	})
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return recordToAttendance(inserted)
}

// ClearMark removes a cell's record. An unmarked cell is left alone.
func (s *AttendanceServiceImpl) ClearMark(ctx context.Context, req primary.CellRequest) error {
	s.writes.RLock()
	defer s.writes.RUnlock()

	sc, day, err := s.resolveCell(req.Day, req.ProjectID)
	if err != nil {
		return err
	}

	release := s.locks.lock(sc.workerID, calendar.FormatDay(day), req.ProjectID)
	defer release()

	snap, err := s.ledger.Mutate(sc.workerID, day, req.ProjectID, func(*attendance.Record, []attendance.Record) (*attendance.Record, error) {
		return nil, nil
	})
	if err != nil {
		return err
	}

	removed := snap.Record()
	if removed == nil || removed.ID == "" {
		return nil
	}

	if err := s.attendanceRepo.DeleteByID(ctx, removed.ID); err != nil {
		s.ledger.Restore(snap)
		s.logger.WarnContext(ctx, "attendance clear failed, mirror restored",
			"worker", sc.workerID, "project", req.ProjectID, "day", calendar.FormatDay(day),
			"error", err, "actor", ctxutil.ActorFromContext(ctx))
		return &attendance.MarkError{
			Kind:      attendance.ErrRemoteSync,
			WorkerID:  sc.workerID,
			ProjectID: req.ProjectID,
			Day:       day,
			Cause:     fmt.Errorf("failed to delete attendance %s: %w", removed.ID, err),
		}
	}

	s.logger.InfoContext(ctx, "attendance cleared",
		"worker", sc.workerID, "project", req.ProjectID, "day", calendar.FormatDay(day),
		"record", removed.ID, "actor", ctxutil.ActorFromContext(ctx))
	return nil
}

// GetCellState returns the read model of one cell.
func (s *AttendanceServiceImpl) GetCellState(ctx context.Context, req primary.CellRequest) (*primary.CellState, error) {
	sc, day, err := s.resolveCell(req.Day, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return s.cellState(sc, day, req.ProjectID), nil
}

// GetMonthlySummary tallies the selected worker's month.
func (s *AttendanceServiceImpl) GetMonthlySummary(ctx context.Context, filter primary.MonthFilter) (*primary.MonthlySummary, error) {
	sc, err := s.currentScope()
	if err != nil {
		return nil, err
	}
	year, month, err := s.resolveMonth(filter.Month)
	if err != nil {
		return nil, err
	}

	m := summary.MonthlySummary(s.ledger.Records(), year, month, filter.ProjectID)
	return &primary.MonthlySummary{
		WorkerID:   sc.workerID,
		Month:      calendar.FormatMonth(year, month),
		ProjectID:  filter.ProjectID,
		Present:    m.Present,
		FullDay:    m.FullDay,
		Custom:     m.Custom,
		HalfDay:    m.HalfDay,
		Absent:     m.Absent,
		TotalHours: m.TotalHours,
	}, nil
}

// GetProjectAssignments lists the selected worker's projects by recent activity.
func (s *AttendanceServiceImpl) GetProjectAssignments(ctx context.Context) ([]*primary.ProjectAssignment, error) {
	sc, err := s.currentScope()
	if err != nil {
		return nil, err
	}

	rows := summary.ProjectAssignments(sc.workerID, s.ledger.Records(), sc.index, sc.names)
	out := make([]*primary.ProjectAssignment, len(rows))
	for i, r := range rows {
		out[i] = &primary.ProjectAssignment{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			FirstDate:   formatOptionalDay(r.FirstDate),
			LastDate:    formatOptionalDay(r.LastDate),
			DaysWorked:  r.DaysWorked,
			TotalHours:  r.TotalHours,
		}
	}
	return out, nil
}

// ListMarks lists the selected worker's records in a month.
func (s *AttendanceServiceImpl) ListMarks(ctx context.Context, filter primary.MonthFilter) ([]*primary.CellState, error) {
	sc, err := s.currentScope()
	if err != nil {
		return nil, err
	}
	year, month, err := s.resolveMonth(filter.Month)
	if err != nil {
		return nil, err
	}

	var out []*primary.CellState
	for _, r := range s.ledger.Records() {
		if !calendar.InMonth(r.Date, year, month) {
			continue
		}
		if filter.ProjectID != "" && r.ProjectID != filter.ProjectID {
			continue
		}
		rec := r
		out = append(out, toCellState(sc, r.Date, r.ProjectID, &rec))
	}
	return out, nil
}

func (s *AttendanceServiceImpl) resolveCell(dayStr, projectID string) (scope, time.Time, error) {
	sc, err := s.currentScope()
	if err != nil {
		return scope{}, time.Time{}, err
	}
	if projectID == "" {
		return scope{}, time.Time{}, fmt.Errorf("%w: project is required", attendance.ErrInvalidInput)
	}
	day, err := calendar.ParseDay(dayStr)
	if err != nil {
		return scope{}, time.Time{}, fmt.Errorf("%w: %w", attendance.ErrInvalidInput, err)
	}
	return sc, day, nil
}

func (s *AttendanceServiceImpl) resolveMonth(month string) (int, time.Month, error) {
	if month == "" {
		now := s.now()
		return now.Year(), now.Month(), nil
	}
	year, m, err := calendar.ParseMonth(month)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", attendance.ErrInvalidInput, err)
	}
	return year, m, nil
}

func (s *AttendanceServiceImpl) cellState(sc scope, day time.Time, projectID string) *primary.CellState {
	rec, ok := s.ledger.Get(sc.workerID, day, projectID)
	if !ok {
		return toCellState(sc, day, projectID, nil)
	}
	return toCellState(sc, day, projectID, &rec)
}

func toCellState(sc scope, day time.Time, projectID string, rec *attendance.Record) *primary.CellState {
	cell := &primary.CellState{
		WorkerID:   sc.workerID,
		ProjectID:  projectID,
		Day:        calendar.FormatDay(day),
		IsAssigned: sc.index.IsDateAssigned(sc.workerID, projectID, day),
	}
	if rec != nil {
		cell.Marked = true
		cell.Status = rec.Status
		cell.IsPresent = rec.IsPresent
		cell.IsHalfDay = rec.IsHalfDay
		cell.HoursWorked = rec.HoursWorked
		cell.RecordID = rec.ID
	}
	return cell
}

// recordToAttendance converts a stored row into a canonical record.
func recordToAttendance(row *secondary.AttendanceRecord) (attendance.Record, error) {
	day, err := calendar.ParseDay(dayPart(row.Date))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("attendance %s: %w", row.ID, err)
	}
	return attendance.Normalize(attendance.StoredRecord{
		ID:          row.ID,
		WorkerID:    row.WorkerID,
		ProjectID:   row.ProjectID,
		Date:        day,
		IsPresent:   row.IsPresent,
		IsHalfDay:   row.IsHalfDay,
		HoursWorked: row.HoursWorked,
		Status:      row.Status,
	}), nil
}

func recordToAssignment(row *secondary.AssignmentRecord) (assignment.Assignment, error) {
	a := assignment.Assignment{WorkerID: row.WorkerID, ProjectID: row.ProjectID}
	if row.AssignedFrom != "" {
		from, err := calendar.ParseDay(dayPart(row.AssignedFrom))
		if err != nil {
			return assignment.Assignment{}, fmt.Errorf("assignment %s: %w", row.ID, err)
		}
		a.From = &from
	}
	if row.AssignedTo != "" {
		to, err := calendar.ParseDay(dayPart(row.AssignedTo))
		if err != nil {
			return assignment.Assignment{}, fmt.Errorf("assignment %s: %w", row.ID, err)
		}
		a.To = &to
	}
	return a, nil
}

// dayPart trims a timestamp down to its YYYY-MM-DD prefix.
func dayPart(s string) string {
	if len(s) > len(calendar.DayLayout) {
		return s[:len(calendar.DayLayout)]
	}
	return s
}

func sameDay(stored, day string) bool {
	return dayPart(stored) == day
}

func formatOptionalDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return calendar.FormatDay(*t)
}

var _ primary.AttendanceService = (*AttendanceServiceImpl)(nil)
