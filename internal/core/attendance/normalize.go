package attendance

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/rollcall/internal/core/calendar"
)

// StoredRecord is an attendance row as it may exist in a store. Rows written
// before the structured columns existed carry only a free-text Status, so the
// structured fields are nullable here.
type StoredRecord struct {
	ID          string
	WorkerID    string
	ProjectID   string
	Date        time.Time
	IsPresent   *bool
	IsHalfDay   *bool
	HoursWorked *float64
	Status      string
}

var hoursPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hour|hours)$`)

// Normalize migrates any stored shape into a canonical Record. All logic that
// reads records runs on the output of this function.
func Normalize(s StoredRecord) Record {
	rec := Record{
		ID:        s.ID,
		WorkerID:  s.WorkerID,
		ProjectID: s.ProjectID,
		Date:      calendar.Day(s.Date),
	}

	if s.IsPresent != nil && s.IsHalfDay != nil && s.HoursWorked != nil {
		return rec.WithFields(canonicalFields(*s.IsPresent, *s.IsHalfDay, *s.HoursWorked, s.Status))
	}

	if d, ok := parseLegacyStatus(s.Status); ok {
		f, err := Apply(d)
		if err == nil {
			return rec.WithFields(f)
		}
	}

	// Partial structured data with an unrecognised label.
	switch {
	case s.IsHalfDay != nil && *s.IsHalfDay:
		f, _ := Apply(Half())
		return rec.WithFields(f)
	case s.IsPresent != nil && !*s.IsPresent:
		f, _ := Apply(Absent())
		return rec.WithFields(f)
	case s.HoursWorked != nil && *s.HoursWorked > 0 && *s.HoursWorked <= MaxHours && *s.HoursWorked != FullDayHours:
		f, _ := Apply(Custom(RoundHours(*s.HoursWorked)))
		return rec.WithFields(f)
	case s.IsPresent != nil && *s.IsPresent, s.HoursWorked != nil && *s.HoursWorked > 0:
		f, _ := Apply(Full())
		return rec.WithFields(f)
	}

	f, _ := Apply(Absent())
	return rec.WithFields(f)
}

// canonicalFields keeps structured values and repairs a label that drifted from them.
func canonicalFields(present, half bool, hours float64, status string) Fields {
	switch {
	case !present:
		f, _ := Apply(Absent())
		return f
	case half:
		f, _ := Apply(Half())
		return f
	case status == LabelPresent || (hours == FullDayHours && status != HoursLabel(hours)):
		f, _ := Apply(Full())
		return f
	}
	if f, err := Apply(Custom(RoundHours(hours))); err == nil {
		return f
	}
	f, _ := Apply(Full())
	return f
}

func parseLegacyStatus(status string) (Desired, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "":
		return Desired{}, false
	case "present", "full", "full day", "full-day":
		return Full(), true
	case "half day", "half-day", "halfday", "half":
		return Half(), true
	case "absent":
		return Absent(), true
	}
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Desired{}, false
		}
		if h == 0 {
			return Absent(), true
		}
		return Custom(RoundHours(h)), true
	}
	return Desired{}, false
}
