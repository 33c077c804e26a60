package staff

import (
	"time"

	"github.com/shopspring/decimal"

	"staffpay/internal/domain/payroll"
)

type Staff struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	UserID      string    `json:"userId"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`

	PayType       payroll.PayType  `json:"payType"`
	MonthlySalary *decimal.Decimal `json:"monthlySalary,omitempty"`
	HourlyRate    *decimal.Decimal `json:"hourlyRate,omitempty"`
	DailyRate     *decimal.Decimal `json:"dailyRate,omitempty"`

	StatutoryEligible bool `json:"statutoryEligible"`
}

// Override holds per-staff deviations from the company pay policy. Nil
// fields fall through to the policy default.
type Override struct {
	ContractedDays       *int             `json:"contractedDays,omitempty"`
	HalfDayHourThreshold *decimal.Decimal `json:"halfDayHourThreshold,omitempty"`
	HalfDayWeight        *decimal.Decimal `json:"halfDayWeight,omitempty"`
	OvertimeMultiplier   *decimal.Decimal `json:"overtimeMultiplier,omitempty"`
	LatePenaltyPerMinute *decimal.Decimal `json:"latePenaltyPerMinute,omitempty"`
	AbsencePenaltyPerDay *decimal.Decimal `json:"absencePenaltyPerDay,omitempty"`
	PFPercent            *decimal.Decimal `json:"pfPercent,omitempty"`
	ESIPercent           *decimal.Decimal `json:"esiPercent,omitempty"`
}
