// Package summary derives read-only aggregates from attendance records.
// Everything here is recomputed on demand; nothing is maintained incrementally.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rollcall/internal/core/assignment"
	"github.com/example/rollcall/internal/core/attendance"
	"github.com/example/rollcall/internal/core/calendar"
)

// Monthly is the per-month tally for one worker.
type Monthly struct {
	Year      int
	Month     time.Month
	ProjectID string // empty means all projects

	Present int // present and not half, custom hours included
	FullDay int // Present minus Custom: standard full days only
	Custom  int // subset of Present recorded with custom hours
	HalfDay int
	Absent  int // explicitly recorded zero-hour days

	TotalHours float64
}

// MonthlySummary tallies the records that fall in the given month, optionally
// restricted to one project.
func MonthlySummary(records []attendance.Record, year int, month time.Month, projectID string) Monthly {
	out := Monthly{Year: year, Month: month, ProjectID: projectID}
	total := decimal.Zero

	for _, r := range records {
		if !calendar.InMonth(r.Date, year, month) {
			continue
		}
		if projectID != "" && r.ProjectID != projectID {
			continue
		}

		switch {
		case r.IsPresent && r.IsHalfDay:
			out.HalfDay++
		case r.IsPresent:
			out.Present++
			if attendance.StateOf(&r) == attendance.StateCustom {
				out.Custom++
			} else {
				out.FullDay++
			}
		default:
			out.Absent++
		}
		total = total.Add(decimal.NewFromFloat(r.HoursWorked))
	}

	out.TotalHours = total.InexactFloat64()
	return out
}

// ProjectAssignment summarises one project of the worker's assignment list.
type ProjectAssignment struct {
	ProjectID   string
	ProjectName string
	FirstDate   *time.Time
	LastDate    *time.Time
	DaysWorked  int
	TotalHours  float64
}

type projectAcc struct {
	first, last *time.Time
	days        int
	hours       decimal.Decimal
}

// ProjectAssignments groups the worker's records by project, adds assigned
// projects with no attendance yet, and sorts by most recent activity.
// Explicit assignment bounds win over dates derived from attendance.
func ProjectAssignments(workerID string, records []attendance.Record, ix *assignment.Index, names map[string]string) []ProjectAssignment {
	acc := make(map[string]*projectAcc)
	var order []string
	get := func(projectID string) *projectAcc {
		a, ok := acc[projectID]
		if !ok {
			a = &projectAcc{hours: decimal.Zero}
			acc[projectID] = a
			order = append(order, projectID)
		}
		return a
	}

	for _, r := range records {
		if r.WorkerID != workerID {
			continue
		}
		a := get(r.ProjectID)
		d := calendar.Day(r.Date)
		if a.first == nil || d.Before(*a.first) {
			first := d
			a.first = &first
		}
		if a.last == nil || d.After(*a.last) {
			last := d
			a.last = &last
		}
		if r.IsPresent {
			a.days++
		}
		a.hours = a.hours.Add(decimal.NewFromFloat(r.HoursWorked))
	}

	for _, projectID := range ix.Projects(workerID) {
		get(projectID)
	}

	out := make([]ProjectAssignment, 0, len(order))
	for _, projectID := range order {
		a := acc[projectID]
		pa := ProjectAssignment{
			ProjectID:   projectID,
			ProjectName: names[projectID],
			FirstDate:   a.first,
			LastDate:    a.last,
			DaysWorked:  a.days,
			TotalHours:  a.hours.InexactFloat64(),
		}
		if pa.ProjectName == "" {
			pa.ProjectName = projectID
		}

		from, to := ix.Bounds(workerID, projectID)
		if from != nil {
			pa.FirstDate = from
		}
		if to != nil {
			pa.LastDate = to
		}
		out = append(out, pa)
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].LastDate, out[j].LastDate
		switch {
		case li == nil && lj != nil:
			return false
		case li != nil && lj == nil:
			return true
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.After(*lj)
		}
		if out[i].DaysWorked != out[j].DaysWorked {
			return out[i].DaysWorked > out[j].DaysWorked
		}
		return out[i].ProjectID < out[j].ProjectID
	})

	return out
}
