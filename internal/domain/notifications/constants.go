package notifications

const (
	TypeSalaryCalculated   = "salary_calculated"
	TypeSalaryApproved     = "salary_approved"
	TypeSalaryPaid         = "salary_paid"
	TypeAttendanceApproved = "attendance_approved"
	TypeAttendanceRejected = "attendance_rejected"
)
