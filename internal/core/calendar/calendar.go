// Package calendar holds the day-granular date helpers shared by the core packages.
// A day is a time.Time at UTC midnight; the time-of-day of any input is discarded.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire and storage format for calendar days.
const DayLayout = "2006-01-02"

// MonthLayout is the wire format for calendar months.
const MonthLayout = "2006-01"

// Day strips the time-of-day from t, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(DayLayout)
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}

// FormatMonth renders a year/month pair as YYYY-MM.
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// InMonth reports whether day falls in the given year and month.
func InMonth(day time.Time, year int, month time.Month) bool {
	y, m, _ := day.Date()
	return y == year && m == month
}
