package attendance

import (
	"sort"
	"time"

	"github.com/example/rollcall/internal/core/calendar"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed        bool
	Reason         string
	Kind           error
	OtherProjectID string

	ctx MarkContext
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &MarkError{
		Kind:           r.Kind,
		WorkerID:       r.ctx.WorkerID,
		ProjectID:      r.ctx.ProjectID,
		Day:            calendar.Day(r.ctx.Day),
		OtherProjectID: r.OtherProjectID,
	}
}

// MarkContext provides context for the mark guard.
type MarkContext struct {
	WorkerID   string
	ProjectID  string
	Day        time.Time
	IsAssigned bool     // from the assignment index
	SameDay    []Record // every mirrored record of the worker on Day, any project
}

// CanMark evaluates whether attendance may be written for the triple.
// Rules, in order:
// - Day must fall inside an assignment window for the project
// - No other project may already hold a present mark for the worker that day
func CanMark(ctx MarkContext) GuardResult {
	// Rule 1: assignment window
	if !ctx.IsAssigned {
		r := GuardResult{Kind: ErrNotAssigned, ctx: ctx}
		r.Reason = r.Error().Error()
		return r
	}

	// Rule 2: no competing presence elsewhere
	var others []string
	day := calendar.Day(ctx.Day)
	for _, rec := range ctx.SameDay {
		if rec.WorkerID != ctx.WorkerID || rec.ProjectID == ctx.ProjectID {
			continue
		}
		if !calendar.Day(rec.Date).Equal(day) {
			continue
		}
		if rec.IsPresent {
			others = append(others, rec.ProjectID)
		}
	}
	if len(others) > 0 {
		sort.Strings(others)
		r := GuardResult{Kind: ErrDoubleBooked, OtherProjectID: others[0], ctx: ctx}
		r.Reason = r.Error().Error()
		return r
	}

	return GuardResult{Allowed: true, ctx: ctx}
}
