package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a calendar month, the calculation and uniqueness unit for
// salary records.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) Valid() bool {
	return p.Year >= 1970 && p.Month >= time.January && p.Month <= time.December
}

// Contains reports whether t falls inside the period's calendar month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

type PayType string

const (
	PayMonthly PayType = "monthly"
	PayHourly  PayType = "hourly"
	PayDaily   PayType = "daily"
)

// PayBasis is the pay-type tag plus the single rate that is meaningful for
// it: monthly salary, hourly rate, or daily rate. Constructing it through
// the helpers below keeps the "exactly one rate" rule out of runtime checks.
type PayBasis struct {
	Type PayType
	Rate decimal.Decimal
}

func MonthlyBasis(salary decimal.Decimal) PayBasis {
	return PayBasis{Type: PayMonthly, Rate: salary}
}

func HourlyBasis(rate decimal.Decimal) PayBasis {
	return PayBasis{Type: PayHourly, Rate: rate}
}

func DailyBasis(rate decimal.Decimal) PayBasis {
	return PayBasis{Type: PayDaily, Rate: rate}
}

// CompensationConfig is the effective pay configuration for one staff
// member: company policy defaults merged with per-staff overrides.
type CompensationConfig struct {
	Basis                PayBasis
	ContractedDays       int
	StandardHoursPerDay  decimal.Decimal
	HalfDayHourThreshold decimal.Decimal
	// HalfDayWeight is the payout fraction a half day contributes to the
	// payable-day count. Company policy, usually 0.5.
	HalfDayWeight        decimal.Decimal
	OvertimeMultiplier   decimal.Decimal
	LatePenaltyPerMinute decimal.Decimal
	AbsencePenaltyPerDay decimal.Decimal
	PFPercent            decimal.Decimal
	ESIPercent           decimal.Decimal
	ESIWageCeiling       decimal.Decimal
	StatutoryEligible    bool
}

var hundred = decimal.NewFromInt(100)

func (c CompensationConfig) Validate() error {
	if c.ContractedDays <= 0 {
		return configurationError("contractedDays", "contracted working days must be positive")
	}
	switch c.Basis.Type {
	case PayMonthly, PayHourly, PayDaily:
	default:
		return configurationError("payType", fmt.Sprintf("unknown pay type %q", c.Basis.Type))
	}
	if !c.Basis.Rate.IsPositive() {
		return configurationError("rate", "no rate populated for pay type "+string(c.Basis.Type))
	}
	if !c.StandardHoursPerDay.IsPositive() {
		return configurationError("standardHoursPerDay", "standard hours per day must be positive")
	}
	if c.HalfDayWeight.IsNegative() || c.HalfDayWeight.GreaterThan(decimal.NewFromInt(1)) {
		return configurationError("halfDayWeight", "half-day weight must be within [0, 1]")
	}
	for field, pct := range map[string]decimal.Decimal{
		"pfPercent":  c.PFPercent,
		"esiPercent": c.ESIPercent,
	} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return configurationError(field, "percentage must be within [0, 100]")
		}
	}
	if c.LatePenaltyPerMinute.IsNegative() || c.AbsencePenaltyPerDay.IsNegative() {
		return configurationError("penalties", "penalty rates must not be negative")
	}
	return nil
}

// SalaryRecord is the computed payroll result for one staff member and
// period. Gross and net are identities over the other amounts and are
// recomputed, never hand-edited.
type SalaryRecord struct {
	ID            string
	StaffID       string
	Period        Period
	WorkingDays   int
	HalfDays      int
	AbsentDays    int
	PayableDays   decimal.Decimal
	WorkingHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	LateMinutes   int

	BaseAmount      decimal.Decimal
	OvertimeAmount  decimal.Decimal
	PenaltyAmount   decimal.Decimal
	DeductionAmount decimal.Decimal
	GrossAmount     decimal.Decimal
	NetAmount       decimal.Decimal

	Status    string
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// statusTransitions encodes the monotonic lifecycle:
// pending -> approved -> paid, or pending -> rejected (terminal).
var statusTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusPaid},
}

func (r SalaryRecord) CanTransition(to string) bool {
	for _, allowed := range statusTransitions[r.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnsureRecalculable gates recalculation: only a pending record may be
// overwritten by a new run.
func (r SalaryRecord) EnsureRecalculable() error {
	if r.Status != StatusPending {
		return stateError(r.StaffID, r.Period, "cannot recalculate a "+r.Status+" salary record")
	}
	return nil
}

// BreakdownEntry is one itemized line of a salary record. Amounts are
// signed: earnings positive, deductions and penalties negative, so the
// entries of a record sum to its net amount.
type BreakdownEntry struct {
	SalaryID    string
	Type        string
	Description string
	Amount      decimal.Decimal
}

func (e BreakdownEntry) IsEarning() bool {
	return e.Type == BreakdownBaseSalary || e.Type == BreakdownOvertime
}

// LedgerEntry is an append-only posting against a finalized salary record.
// Sign convention (fixed here, tested in ledger_test.go): payments and
// deductions carry negative amounts because they settle the debt to staff;
// recoveries carry positive amounts because they re-open it. The amount
// still owed is therefore always netAmount + sum(entry amounts).
type LedgerEntry struct {
	ID         string
	SalaryID   string
	StaffID    string
	Type       string
	Amount     decimal.Decimal
	Reason     string
	ReversalOf string
	CreatedBy  string
	CreatedAt  time.Time
}

// Reconciliation is the read-only fold of a salary's ledger history.
type Reconciliation struct {
	SalaryID       string          `json:"salaryId"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalDeducted  decimal.Decimal `json:"totalDeducted"`
	TotalRecovered decimal.Decimal `json:"totalRecovered"`
	Balance        decimal.Decimal `json:"balanceAmount"`
	EntryCount     int             `json:"entryCount"`
}
