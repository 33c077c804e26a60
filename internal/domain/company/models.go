package company

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
}

// PayPolicy is the company-wide default compensation policy. Staff-level
// overrides are merged on top of it at calculation time.
type PayPolicy struct {
	CompanyID            string          `json:"companyId"`
	ContractedDays       int             `json:"contractedDays"`
	StandardHoursPerDay  decimal.Decimal `json:"standardHoursPerDay"`
	WorkdayStart         string          `json:"workdayStart"` // HH:MM, used for late-minute computation
	HalfDayHourThreshold decimal.Decimal `json:"halfDayHourThreshold"`
	HalfDayWeight        decimal.Decimal `json:"halfDayWeight"`
	OvertimeMultiplier   decimal.Decimal `json:"overtimeMultiplier"`
	LatePenaltyPerMinute decimal.Decimal `json:"latePenaltyPerMinute"`
	AbsencePenaltyPerDay decimal.Decimal `json:"absencePenaltyPerDay"`
	PFPercent            decimal.Decimal `json:"pfPercent"`
	ESIPercent           decimal.Decimal `json:"esiPercent"`
	ESIWageCeiling       decimal.Decimal `json:"esiWageCeiling"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}
