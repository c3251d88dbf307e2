// Package assignment contains the pure business logic for assignment windows.
// This is part of the Functional Core - no I/O, only pure functions.
package assignment

import (
	"sort"
	"time"

	"github.com/example/rollcall/internal/core/calendar"
)

// Window is one assignment interval. A nil bound is open on that side.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether day falls inside the window, inclusive on both ends.
// Comparison is day-granular.
func (w Window) Contains(day time.Time) bool {
	d := calendar.Day(day)
	if w.From != nil && d.Before(calendar.Day(*w.From)) {
		return false
	}
	if w.To != nil && d.After(calendar.Day(*w.To)) {
		return false
	}
	return true
}

// IsDateAssigned reports whether day falls in any of the windows.
// Zero windows means the worker is not assigned at all, so the answer is false.
func IsDateAssigned(windows []Window, day time.Time) bool {
	for _, w := range windows {
		if w.Contains(day) {
			return true
		}
	}
	return false
}

// Assignment links a worker to a project for one window.
type Assignment struct {
	WorkerID  string
	ProjectID string
	Window
}

type pairKey struct {
	workerID  string
	projectID string
}

// Index resolves assignment windows per (worker, project) pair.
// It is immutable once built.
type Index struct {
	windows map[pairKey][]Window
	order   map[string][]string // workerID -> projectIDs in first-seen order
}

// NewIndex builds an index from assignment rows.
// Several rows for the same pair are kept as a disjunction.
func NewIndex(assignments []Assignment) *Index {
	ix := &Index{
		windows: make(map[pairKey][]Window),
		order:   make(map[string][]string),
	}
	for _, a := range assignments {
		k := pairKey{a.WorkerID, a.ProjectID}
		if _, seen := ix.windows[k]; !seen {
			ix.order[a.WorkerID] = append(ix.order[a.WorkerID], a.ProjectID)
		}
		ix.windows[k] = append(ix.windows[k], a.Window)
	}
	return ix
}

// IsDateAssigned reports whether the worker may have attendance recorded
// against the project on day.
func (ix *Index) IsDateAssigned(workerID, projectID string, day time.Time) bool {
	if ix == nil {
		return false
	}
	return IsDateAssigned(ix.windows[pairKey{workerID, projectID}], day)
}

// Windows returns the windows recorded for the pair.
func (ix *Index) Windows(workerID, projectID string) []Window {
	if ix == nil {
		return nil
	}
	ws := ix.windows[pairKey{workerID, projectID}]
	out := make([]Window, len(ws))
	copy(out, ws)
	return out
}

// Projects returns the project IDs the worker holds at least one window for.
func (ix *Index) Projects(workerID string) []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.order[workerID]))
	copy(out, ix.order[workerID])
	return out
}

// Bounds returns the overall explicit span of the worker's windows on a project.
// from is the earliest explicit start, to the latest explicit end. A bound is nil
// when no windows exist or when any window is open on that side.
func (ix *Index) Bounds(workerID, projectID string) (from, to *time.Time) {
	ws := ix.Windows(workerID, projectID)
	if len(ws) == 0 {
		return nil, nil
	}

	openStart, openEnd := false, false
	var froms, tos []time.Time
	for _, w := range ws {
		if w.From == nil {
			openStart = true
		} else {
			froms = append(froms, calendar.Day(*w.From))
		}
		if w.To == nil {
			openEnd = true
		} else {
			tos = append(tos, calendar.Day(*w.To))
		}
	}

	if !openStart && len(froms) > 0 {
		sort.Slice(froms, func(i, j int) bool { return froms[i].Before(froms[j]) })
		f := froms[0]
		from = &f
	}
	if !openEnd && len(tos) > 0 {
		sort.Slice(tos, func(i, j int) bool { return tos[i].After(tos[j]) })
		t := tos[0]
		to = &t
	}
	return from, to
}
