package payroll

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusPaid     = "paid"
	StatusRejected = "rejected"

	BreakdownBaseSalary       = "BASE_SALARY"
	BreakdownOvertime         = "OVERTIME"
	BreakdownLatePenalty      = "LATE_PENALTY"
	BreakdownAbsenceDeduction = "ABSENCE_DEDUCTION"
	BreakdownProvidentFund    = "PF_DEDUCTION"
	BreakdownStateInsurance   = "ESI_DEDUCTION"

	LedgerPayment   = "PAYMENT"
	LedgerDeduction = "DEDUCTION"
	LedgerRecovery  = "RECOVERY"
)

// ReconcileTolerance is the maximum absolute drift allowed between a salary
// record's net amount and the signed sum of its breakdown entries.
const ReconcileTolerance = "0.01"
