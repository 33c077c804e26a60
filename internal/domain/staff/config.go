package staff

import (
	"github.com/shopspring/decimal"

	"staffpay/internal/domain/company"
	"staffpay/internal/domain/payroll"
)

// EffectiveConfig merges the company pay policy with a staff member's
// overrides into the compensation config the calculator consumes. The
// result is not validated here; payroll.Calculate validates before use so
// configuration errors surface with the calculation that hit them.
func EffectiveConfig(policy company.PayPolicy, member Staff, override Override) payroll.CompensationConfig {
	cfg := payroll.CompensationConfig{
		Basis:                basisFor(member),
		ContractedDays:       policy.ContractedDays,
		StandardHoursPerDay:  policy.StandardHoursPerDay,
		HalfDayHourThreshold: policy.HalfDayHourThreshold,
		HalfDayWeight:        policy.HalfDayWeight,
		OvertimeMultiplier:   policy.OvertimeMultiplier,
		LatePenaltyPerMinute: policy.LatePenaltyPerMinute,
		AbsencePenaltyPerDay: policy.AbsencePenaltyPerDay,
		PFPercent:            policy.PFPercent,
		ESIPercent:           policy.ESIPercent,
		ESIWageCeiling:       policy.ESIWageCeiling,
		StatutoryEligible:    member.StatutoryEligible,
	}

	if override.ContractedDays != nil {
		cfg.ContractedDays = *override.ContractedDays
	}
	applyDecimal(&cfg.HalfDayHourThreshold, override.HalfDayHourThreshold)
	applyDecimal(&cfg.HalfDayWeight, override.HalfDayWeight)
	applyDecimal(&cfg.OvertimeMultiplier, override.OvertimeMultiplier)
	applyDecimal(&cfg.LatePenaltyPerMinute, override.LatePenaltyPerMinute)
	applyDecimal(&cfg.AbsencePenaltyPerDay, override.AbsencePenaltyPerDay)
	applyDecimal(&cfg.PFPercent, override.PFPercent)
	applyDecimal(&cfg.ESIPercent, override.ESIPercent)
	return cfg
}

func basisFor(member Staff) payroll.PayBasis {
	switch member.PayType {
	case payroll.PayMonthly:
		return payroll.MonthlyBasis(rateOrZero(member.MonthlySalary))
	case payroll.PayHourly:
		return payroll.HourlyBasis(rateOrZero(member.HourlyRate))
	case payroll.PayDaily:
		return payroll.DailyBasis(rateOrZero(member.DailyRate))
	}
	return payroll.PayBasis{Type: member.PayType}
}

func rateOrZero(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return *rate
}

func applyDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}
