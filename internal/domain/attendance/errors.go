package attendance

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyPunchedIn  = errors.New("already punched in today")
	ErrAlreadyPunchedOut = errors.New("already punched out")
	ErrNotPunchedIn      = errors.New("not punched in yet")
	ErrNotFound          = errors.New("attendance record not found")
	ErrAlreadyProcessed  = errors.New("attendance record already approved or rejected")
	ErrPeriodClosed      = errors.New("attendance period is closed")
)

// ValidationError describes one malformed attendance record. The payroll
// calculator wraps it into its own validation kind before surfacing it.
type ValidationError struct {
	StaffID string
	Date    time.Time
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("attendance validation: %s: %s (staff %s)", e.Field, e.Reason, e.StaffID)
	}
	return fmt.Sprintf("attendance validation: %s: %s (staff %s, %s)", e.Field, e.Reason, e.StaffID, e.Date.Format("2006-01-02"))
}
