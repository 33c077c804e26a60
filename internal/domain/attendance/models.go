package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusAbsent   = "absent"
	StatusLeave    = "leave"
)

// DayRecord is one staff member's attendance for one calendar date.
// WorkingHours is nil until punch-out computes it; a record with no
// punch-in is never approved as present.
type DayRecord struct {
	ID           string
	StaffID      string
	Date         time.Time
	PunchIn      *time.Time
	PunchOut     *time.Time
	WorkingHours *decimal.Decimal
	LateMinutes  int
	Status       string
	ApprovedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var maxWorkingHours = decimal.NewFromInt(24)

// Validate rejects malformed records before classification is attempted.
func (r DayRecord) Validate() error {
	if r.Date.IsZero() {
		return &ValidationError{StaffID: r.StaffID, Field: "date", Reason: "date is required"}
	}
	if r.PunchIn == nil && r.Status == StatusApproved {
		return &ValidationError{StaffID: r.StaffID, Date: r.Date, Field: "status", Reason: "record without punch-in cannot be approved"}
	}
	if r.PunchIn != nil && r.PunchOut != nil && r.PunchOut.Before(*r.PunchIn) {
		return &ValidationError{StaffID: r.StaffID, Date: r.Date, Field: "punchOut", Reason: "punch-out precedes punch-in"}
	}
	if r.WorkingHours != nil {
		if r.WorkingHours.IsNegative() {
			return &ValidationError{StaffID: r.StaffID, Date: r.Date, Field: "workingHours", Reason: "working hours must not be negative"}
		}
		if r.WorkingHours.GreaterThan(maxWorkingHours) {
			return &ValidationError{StaffID: r.StaffID, Date: r.Date, Field: "workingHours", Reason: "working hours exceed 24"}
		}
	}
	if r.LateMinutes < 0 {
		return &ValidationError{StaffID: r.StaffID, Date: r.Date, Field: "lateMinutes", Reason: "late minutes must not be negative"}
	}
	return nil
}

// Hours returns the computed working hours, zero when not yet known.
func (r DayRecord) Hours() decimal.Decimal {
	if r.WorkingHours == nil {
		return decimal.Zero
	}
	return *r.WorkingHours
}
