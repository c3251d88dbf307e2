// Package attendance contains the pure business logic for attendance marks:
// the status cycle, the legacy record normalizer and the conflict guard.
// This is part of the Functional Core - no I/O, only pure functions.
package attendance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the canonical attendance fact for one (worker, day, project) triple.
type Record struct {
	ID          string
	WorkerID    string
	ProjectID   string
	Date        time.Time
	IsPresent   bool
	IsHalfDay   bool
	HoursWorked float64
	Status      string
}

// State is a position in the attendance status machine.
type State int

const (
	StateEmpty State = iota
	StateFull
	StateHalf
	StateAbsent
	StateCustom
)

// Hour counts and labels for the fixed states.
const (
	FullDayHours = 8.0
	HalfDayHours = 4.0
	MaxHours     = 24.0

	LabelPresent = "Present"
	LabelHalfDay = "Half Day"
	LabelAbsent  = "Absent"
)

// HoursPrecision is the number of decimal places an hour count may carry.
// Stores keep hours as numeric(5,2); a finer value would drift from its label.
const HoursPrecision = 2

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFull:
		return "full"
	case StateHalf:
		return "half"
	case StateAbsent:
		return "absent"
	case StateCustom:
		return "custom"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState maps user input to a writable state. Empty is not writable; use clear.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "present":
		return StateFull, nil
	case "half", "half-day", "halfday", "half day":
		return StateHalf, nil
	case "absent":
		return StateAbsent, nil
	case "custom", "hours":
		return StateCustom, nil
	}
	return StateEmpty, fmt.Errorf("%w: unknown attendance state %q (want full, half, absent or custom)", ErrInvalidInput, s)
}

// Desired is the target of a mark: a state plus, for StateCustom, an hour count.
type Desired struct {
	State State
	Hours float64
}

// Full, Half and Absent are the cycle states.
func Full() Desired { return Desired{State: StateFull} }
func Half() Desired { return Desired{State: StateHalf} }
func Absent() Desired { return Desired{State: StateAbsent} }

// Custom returns a custom-hours target. Bounds are checked by Apply.
func Custom(hours float64) Desired { return Desired{State: StateCustom, Hours: hours} }

// Fields are the structured values persisted for a state. Status is derived
// from the numeric fields here and nowhere else.
type Fields struct {
	IsPresent   bool
	IsHalfDay   bool
	HoursWorked float64
	Status      string
}

// Apply computes the persisted fields for a desired state.
func Apply(d Desired) (Fields, error) {
	switch d.State {
	case StateFull:
		return Fields{IsPresent: true, HoursWorked: FullDayHours, Status: LabelPresent}, nil
	case StateHalf:
		return Fields{IsPresent: true, IsHalfDay: true, HoursWorked: HalfDayHours, Status: LabelHalfDay}, nil
	case StateAbsent:
		return Fields{Status: LabelAbsent}, nil
	case StateCustom:
		if !(d.Hours > 0 && d.Hours <= MaxHours) {
			return Fields{}, fmt.Errorf("%w: %v (must be > 0 and <= %v)", ErrInvalidHours, d.Hours, MaxHours)
		}
		if decimal.NewFromFloat(d.Hours).Exponent() < -HoursPrecision {
			return Fields{}, fmt.Errorf("%w: %v (at most %d decimal places)", ErrInvalidHours, d.Hours, HoursPrecision)
		}
		return Fields{IsPresent: true, HoursWorked: d.Hours, Status: HoursLabel(d.Hours)}, nil
	}
	return Fields{}, fmt.Errorf("state %s cannot be written", d.State)
}

// HoursLabel renders the custom-hours status label, e.g. "6 h" or "7.5 h".
func HoursLabel(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64) + " h"
}

// RoundHours rounds an hour count to HoursPrecision decimal places.
func RoundHours(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return hours
	}
	return decimal.NewFromFloat(hours).Round(HoursPrecision).InexactFloat64()
}

// Next is the single-action toggle. It is total: a missing record is Empty,
// and any shape not matched below falls through to Full.
//
//	Empty -> Full -> Half -> Absent -> Full
func Next(rec *Record) Desired {
	switch {
	case rec == nil:
		return Full()
	case rec.IsPresent && !rec.IsHalfDay:
		return Half()
	case rec.IsHalfDay:
		return Absent()
	default:
		return Full()
	}
}

// StateOf classifies a canonical record.
func StateOf(rec *Record) State {
	switch {
	case rec == nil:
		return StateEmpty
	case !rec.IsPresent:
		return StateAbsent
	case rec.IsHalfDay:
		return StateHalf
	case rec.Status == LabelPresent:
		return StateFull
	default:
		return StateCustom
	}
}

// WithFields returns a copy of rec carrying f.
func (r Record) WithFields(f Fields) Record {
	r.IsPresent = f.IsPresent
	r.IsHalfDay = f.IsHalfDay
	r.HoursWorked = f.HoursWorked
	r.Status = f.Status
	return r
}

// Fields returns the structured values of the record.
func (r Record) Fields() Fields {
	return Fields{
		IsPresent:   r.IsPresent,
		IsHalfDay:   r.IsHalfDay,
		HoursWorked: r.HoursWorked,
		Status:      r.Status,
	}
}
