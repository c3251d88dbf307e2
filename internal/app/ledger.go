package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/rollcall/internal/core/attendance"
	"github.com/example/rollcall/internal/core/calendar"
)

// cellKey identifies a record inside one worker's mirror.
type cellKey struct {
	day       string
	projectID string
}

func keyFor(day time.Time, projectID string) cellKey {
	return cellKey{day: calendar.FormatDay(day), projectID: projectID}
}

// Ledger is the in-memory mirror of one worker's attendance records.
// It is the source of truth for reads while a remote write is in flight.
// Values go in and out by copy so nothing outside can mutate the mirror.
type Ledger struct {
	mu         sync.RWMutex
	workerID   string
	generation uint64
	records    map[cellKey]attendance.Record
}

// Snapshot is the saved state of one cell, taken before an optimistic write.
type Snapshot struct {
	key        cellKey
	generation uint64
	record     *attendance.Record // nil when the cell had no record
}

// Record returns the saved record, or nil when the cell was unmarked.
func (s Snapshot) Record() *attendance.Record {
	if s.record == nil {
		return nil
	}
	r := *s.record
	return &r
}

// NewLedger creates an empty mirror.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[cellKey]attendance.Record)}
}

// Replace swaps the mirror wholesale for a freshly loaded worker scope.
// Snapshots taken before the swap no longer apply.
func (l *Ledger) Replace(workerID string, records []attendance.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.workerID = workerID
	l.generation++
	l.records = make(map[cellKey]attendance.Record, len(records))
	for _, r := range records {
		if r.WorkerID != workerID {
			continue
		}
		l.records[keyFor(r.Date, r.ProjectID)] = r
	}
}

// WorkerID returns the worker the mirror currently holds.
func (l *Ledger) WorkerID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.workerID
}

// Get returns the record for the triple.
func (l *Ledger) Get(workerID string, day time.Time, projectID string) (attendance.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if workerID != l.workerID {
		return attendance.Record{}, false
	}
	r, ok := l.records[keyFor(day, projectID)]
	return r, ok
}

// Upsert writes rec into the mirror. An existing record for the same triple
// is updated in place and keeps its ID.
func (l *Ledger) Upsert(rec attendance.Record) (attendance.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upsertLocked(rec)
}

func (l *Ledger) upsertLocked(rec attendance.Record) (attendance.Record, error) {
	if rec.WorkerID != l.workerID {
		return attendance.Record{}, fmt.Errorf("record for worker %s does not belong to selected worker %s", rec.WorkerID, l.workerID)
	}
	rec.Date = calendar.Day(rec.Date)
	k := keyFor(rec.Date, rec.ProjectID)
	if existing, ok := l.records[k]; ok && existing.ID != "" {
		rec.ID = existing.ID
	}
	l.records[k] = rec
	return rec, nil
}

// Delete removes the record with the given ID. Missing IDs are ignored.
func (l *Ledger) Delete(recordID string) {
	if recordID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, r := range l.records {
		if r.ID == recordID {
			delete(l.records, k)
			return
		}
	}
}

// OnDay returns every record of the worker on day, across projects.
func (l *Ledger) OnDay(day time.Time) []attendance.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.onDayLocked(day)
}

func (l *Ledger) onDayLocked(day time.Time) []attendance.Record {
	d := calendar.FormatDay(day)
	var out []attendance.Record
	for k, r := range l.records {
		if k.day == d {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// Records returns a copy of the mirror ordered by day, then project.
func (l *Ledger) Records() []attendance.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]attendance.Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// Mutate runs fn against the current cell and its same-day neighbours under the
// mirror's write lock, then applies fn's result: a record is upserted, nil
// removes the cell. The returned snapshot restores the cell as it was.
// If fn returns an error the mirror is left untouched.
func (l *Ledger) Mutate(workerID string, day time.Time, projectID string, fn func(current *attendance.Record, sameDay []attendance.Record) (*attendance.Record, error)) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if workerID != l.workerID {
		return Snapshot{}, fmt.Errorf("worker %s is not the selected worker", workerID)
	}

	k := keyFor(day, projectID)
	snap := Snapshot{key: k, generation: l.generation}
	if r, ok := l.records[k]; ok {
		saved := r
		snap.record = &saved
	}

	next, err := fn(snap.Record(), l.onDayLocked(day))
	if err != nil {
		return Snapshot{}, err
	}

	if next == nil {
		delete(l.records, k)
		return snap, nil
	}
	if _, err := l.upsertLocked(*next); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Restore puts the cell back to its snapshot value. A snapshot from before a
// Replace is ignored, since the cell now belongs to a fresh scope.
func (l *Ledger) Restore(snap Snapshot) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if snap.generation != l.generation {
		return false
	}
	if snap.record == nil {
		delete(l.records, snap.key)
	} else {
		l.records[snap.key] = *snap.record
	}
	return true
}

// Confirm records the committed remote row for a cell, so the mirror learns
// the ID a first-time insert produced.
func (l *Ledger) Confirm(snap Snapshot, committed attendance.Record) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if snap.generation != l.generation {
		return false
	}
	cur, ok := l.records[snap.key]
	if !ok {
		return false
	}
	cur.ID = committed.ID
	l.records[snap.key] = cur
	return true
}
