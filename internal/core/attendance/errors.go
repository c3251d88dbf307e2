package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotAssigned      = errors.New("not assigned")
	ErrDoubleBooked     = errors.New("double booked")
	ErrRemoteSync       = errors.New("remote sync failure")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrNoWorkerSelected = errors.New("no worker selected")
	ErrWorkerNotFound   = errors.New("worker not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// MarkError describes a rejected or failed attendance write.
type MarkError struct {
	Kind           error
	WorkerID       string
	ProjectID      string
	Day            time.Time
	OtherProjectID string // set for ErrDoubleBooked
	Cause          error  // set for ErrRemoteSync
}

func (e *MarkError) Error() string {
	day := e.Day.Format("2006-01-02")
	switch {
	case errors.Is(e.Kind, ErrNotAssigned):
		return fmt.Sprintf("worker %s is not assigned to project %s on %s", e.WorkerID, e.ProjectID, day)
	case errors.Is(e.Kind, ErrDoubleBooked):
		return fmt.Sprintf("worker %s is already marked present on project %s on %s", e.WorkerID, e.OtherProjectID, day)
	case errors.Is(e.Kind, ErrRemoteSync):
		return fmt.Sprintf("attendance for worker %s on project %s on %s was not saved and has been reverted: %v", e.WorkerID, e.ProjectID, day, e.Cause)
	}
	return fmt.Sprintf("%v: worker %s, project %s, %s", e.Kind, e.WorkerID, e.ProjectID, day)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *MarkError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// ConflictProject returns the competing project of a double-booking error, if err is one.
func ConflictProject(err error) (string, bool) {
	var me *MarkError
	if errors.As(err, &me) && errors.Is(me.Kind, ErrDoubleBooked) {
		return me.OtherProjectID, true
	}
	return "", false
}
