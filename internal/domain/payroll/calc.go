package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"staffpay/internal/domain/attendance"
)

// CalcInput is everything Calculate needs: effective config plus the staff
// member's attendance for exactly one calendar month. Calculate is a pure
// function of this input; identical input yields identical output.
type CalcInput struct {
	StaffID string
	Period  Period
	Config  CompensationConfig
	Days    []attendance.DayRecord
}

// Calculate derives a pending SalaryRecord from classified attendance.
//
// Working days count Present and HalfDay records; a half day counts fully
// toward the working-day denominator but only HalfDayWeight toward the
// payable-day fraction. Absent days are the shortfall against contracted
// days, floored at zero. All monetary math is decimal, unrounded.
func Calculate(in CalcInput) (SalaryRecord, error) {
	cfg := in.Config
	if err := cfg.Validate(); err != nil {
		return SalaryRecord{}, err
	}
	if !in.Period.Valid() {
		return SalaryRecord{}, validationError(in.StaffID, in.Period, "period", "period is not a valid calendar month")
	}

	days := make([]attendance.DayRecord, len(in.Days))
	copy(days, in.Days)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	seen := make(map[string]struct{}, len(days))
	rec := SalaryRecord{
		StaffID:     in.StaffID,
		Period:      in.Period,
		PayableDays: decimal.Zero,
		Status:      StatusPending,
	}
	workingHours := decimal.Zero
	overtimeHours := decimal.Zero

	for _, day := range days {
		if err := day.Validate(); err != nil {
			return SalaryRecord{}, validationError(in.StaffID, in.Period, "attendance", err.Error())
		}
		if !in.Period.Contains(day.Date) {
			return SalaryRecord{}, validationError(in.StaffID, in.Period, "attendance", "record "+day.Date.Format("2006-01-02")+" outside period")
		}
		key := day.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			return SalaryRecord{}, validationError(in.StaffID, in.Period, "attendance", "duplicate record for "+key)
		}
		seen[key] = struct{}{}

		switch attendance.Classify(day, cfg.HalfDayHourThreshold) {
		case attendance.ClassPresent:
			rec.WorkingDays++
			rec.PayableDays = rec.PayableDays.Add(decimal.NewFromInt(1))
		case attendance.ClassHalfDay:
			rec.WorkingDays++
			rec.HalfDays++
			rec.PayableDays = rec.PayableDays.Add(cfg.HalfDayWeight)
		case attendance.ClassAbsent:
			continue
		}

		hours := day.Hours()
		workingHours = workingHours.Add(hours)
		rec.LateMinutes += day.LateMinutes
		if hours.GreaterThan(cfg.StandardHoursPerDay) {
			overtimeHours = overtimeHours.Add(hours.Sub(cfg.StandardHoursPerDay))
		}
	}

	rec.WorkingHours = workingHours
	rec.OvertimeHours = overtimeHours
	rec.AbsentDays = cfg.ContractedDays - rec.WorkingDays
	if rec.AbsentDays < 0 {
		rec.AbsentDays = 0
	}

	rec.BaseAmount = baseAmount(cfg, rec.PayableDays)
	rec.OvertimeAmount = overtimeHours.Mul(perHourRate(cfg)).Mul(cfg.OvertimeMultiplier)
	rec.PenaltyAmount = penaltyAmount(cfg, rec.LateMinutes, rec.AbsentDays)
	rec.DeductionAmount = statutoryDeductions(cfg, rec.BaseAmount)
	rec.GrossAmount = rec.BaseAmount.Add(rec.OvertimeAmount)
	rec.NetAmount = rec.GrossAmount.Sub(rec.PenaltyAmount).Sub(rec.DeductionAmount)
	return rec, nil
}

func baseAmount(cfg CompensationConfig, payableDays decimal.Decimal) decimal.Decimal {
	switch cfg.Basis.Type {
	case PayMonthly:
		return cfg.Basis.Rate.Mul(payableDays).Div(decimal.NewFromInt(int64(cfg.ContractedDays)))
	case PayDaily:
		return cfg.Basis.Rate.Mul(payableDays)
	case PayHourly:
		return cfg.Basis.Rate.Mul(cfg.StandardHoursPerDay).Mul(payableDays)
	}
	return decimal.Zero
}

// perHourRate is the rate a single overtime hour is worth before the
// multiplier. For monthly staff it is salary over contracted hours; for
// daily staff the day rate over standard hours; hourly staff already have
// one.
func perHourRate(cfg CompensationConfig) decimal.Decimal {
	switch cfg.Basis.Type {
	case PayMonthly:
		contractedHours := decimal.NewFromInt(int64(cfg.ContractedDays)).Mul(cfg.StandardHoursPerDay)
		return cfg.Basis.Rate.Div(contractedHours)
	case PayDaily:
		return cfg.Basis.Rate.Div(cfg.StandardHoursPerDay)
	case PayHourly:
		return cfg.Basis.Rate
	}
	return decimal.Zero
}

func penaltyAmount(cfg CompensationConfig, lateMinutes, absentDays int) decimal.Decimal {
	penalty := decimal.Zero
	if cfg.LatePenaltyPerMinute.IsPositive() {
		penalty = penalty.Add(decimal.NewFromInt(int64(lateMinutes)).Mul(cfg.LatePenaltyPerMinute))
	}
	if cfg.AbsencePenaltyPerDay.IsPositive() {
		penalty = penalty.Add(decimal.NewFromInt(int64(absentDays)).Mul(cfg.AbsencePenaltyPerDay))
	}
	return penalty
}

// statutoryDeductions applies PF on the full base and ESI on the base
// capped at the wage ceiling, only for eligibility-flagged staff.
func statutoryDeductions(cfg CompensationConfig, base decimal.Decimal) decimal.Decimal {
	if !cfg.StatutoryEligible {
		return decimal.Zero
	}
	deductions := base.Mul(cfg.PFPercent).Div(hundred)
	esiWage := base
	if cfg.ESIWageCeiling.IsPositive() && esiWage.GreaterThan(cfg.ESIWageCeiling) {
		esiWage = cfg.ESIWageCeiling
	}
	return deductions.Add(esiWage.Mul(cfg.ESIPercent).Div(hundred))
}

// pfAmount and esiAmount expose the two statutory components separately so
// the breakdown builder itemizes exactly what the calculator charged.
func pfAmount(cfg CompensationConfig, base decimal.Decimal) decimal.Decimal {
	if !cfg.StatutoryEligible {
		return decimal.Zero
	}
	return base.Mul(cfg.PFPercent).Div(hundred)
}

func esiAmount(cfg CompensationConfig, base decimal.Decimal) decimal.Decimal {
	if !cfg.StatutoryEligible {
		return decimal.Zero
	}
	esiWage := base
	if cfg.ESIWageCeiling.IsPositive() && esiWage.GreaterThan(cfg.ESIWageCeiling) {
		esiWage = cfg.ESIWageCeiling
	}
	return esiWage.Mul(cfg.ESIPercent).Div(hundred)
}
