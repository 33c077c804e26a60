package attendance

import "github.com/shopspring/decimal"

// DayClass is the payroll-facing label for one attendance day.
type DayClass string

const (
	ClassPresent DayClass = "present"
	ClassHalfDay DayClass = "half_day"
	ClassAbsent  DayClass = "absent"
)

// Classify labels a validated record against the half-day hour threshold.
//
//   - No punch-in, or a supervisor-rejected / absent / leave record, is
//     Absent.
//   - Known working hours below the threshold downgrade the day to HalfDay.
//   - Everything else is Present. That includes an open session (punch-in
//     without punch-out, hours unknown): incomplete attendance still counts
//     as Present. Deliberate lenient policy, not an accident.
//
// Classification never fails; malformed records are rejected by Validate
// before they reach here.
func Classify(rec DayRecord, halfDayThreshold decimal.Decimal) DayClass {
	if rec.PunchIn == nil {
		return ClassAbsent
	}
	switch rec.Status {
	case StatusRejected, StatusAbsent, StatusLeave:
		return ClassAbsent
	}
	if rec.WorkingHours != nil && halfDayThreshold.IsPositive() && rec.WorkingHours.LessThan(halfDayThreshold) {
		return ClassHalfDay
	}
	return ClassPresent
}
