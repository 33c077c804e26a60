package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffpay/internal/domain/attendance"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func monthlyConfig() CompensationConfig {
	return CompensationConfig{
		Basis:                MonthlyBasis(dec("30000")),
		ContractedDays:       26,
		StandardHoursPerDay:  dec("8"),
		HalfDayHourThreshold: dec("4"),
		HalfDayWeight:        dec("0.5"),
		OvertimeMultiplier:   dec("1.5"),
		PFPercent:            dec("12"),
		ESIPercent:           dec("0.75"),
		ESIWageCeiling:       dec("21000"),
		StatutoryEligible:    true,
	}
}

func workedDay(t *testing.T, date string, hours string, lateMinutes int) attendance.DayRecord {
	t.Helper()
	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	punchIn := day.Add(9 * time.Hour)
	parsed := dec(hours)
	punchOut := punchIn.Add(time.Duration(parsed.InexactFloat64() * float64(time.Hour)))
	return attendance.DayRecord{
		StaffID:      "staff-1",
		Date:         day,
		PunchIn:      &punchIn,
		PunchOut:     &punchOut,
		WorkingHours: &parsed,
		LateMinutes:  lateMinutes,
		Status:       attendance.StatusApproved,
	}
}

func presentDays(t *testing.T, year int, month time.Month, count int) []attendance.DayRecord {
	t.Helper()
	days := make([]attendance.DayRecord, 0, count)
	for i := 0; i < count; i++ {
		date := time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		days = append(days, workedDay(t, date, "8", 0))
	}
	return days
}

func TestCalculateMonthlyWithStatutoryDeductions(t *testing.T) {
	rec, err := Calculate(CalcInput{
		StaffID: "staff-1",
		Period:  NewPeriod(2025, time.June),
		Config:  monthlyConfig(),
		Days:    presentDays(t, 2025, time.June, 24),
	})
	require.NoError(t, err)

	assert.Equal(t, 24, rec.WorkingDays)
	assert.Equal(t, 0, rec.HalfDays)
	assert.Equal(t, 2, rec.AbsentDays)
	assert.Equal(t, "24.00", rec.PayableDays.StringFixed(2))

	// 30000 x 24/26, PF 12% on the full base, ESI 0.75% capped at 21000.
	assert.Equal(t, "27692.31", rec.BaseAmount.StringFixed(2))
	assert.Equal(t, "3480.58", rec.DeductionAmount.StringFixed(2))
	assert.Equal(t, "0.00", rec.PenaltyAmount.StringFixed(2))
	assert.Equal(t, "24211.73", rec.NetAmount.StringFixed(2))
	assert.Equal(t, StatusPending, rec.Status)
}

func TestCalculateDailyWithLatePenalty(t *testing.T) {
	cfg := CompensationConfig{
		Basis:                DailyBasis(dec("1000")),
		ContractedDays:       26,
		StandardHoursPerDay:  dec("8"),
		HalfDayHourThreshold: dec("4"),
		HalfDayWeight:        dec("0.5"),
		OvertimeMultiplier:   dec("1.5"),
		LatePenaltyPerMinute: dec("2"),
	}
	days := presentDays(t, 2025, time.June, 22)
	days[3].LateMinutes = 60

	rec, err := Calculate(CalcInput{
		StaffID: "staff-1",
		Period:  NewPeriod(2025, time.June),
		Config:  cfg,
		Days:    days,
	})
	require.NoError(t, err)

	assert.Equal(t, "22000.00", rec.BaseAmount.StringFixed(2))
	assert.Equal(t, 60, rec.LateMinutes)
	assert.Equal(t, "120.00", rec.PenaltyAmount.StringFixed(2))
	assert.Equal(t, "0.00", rec.DeductionAmount.StringFixed(2))
	assert.Equal(t, "21880.00", rec.NetAmount.StringFixed(2))
}

func TestCalculateHalfDaysWeightPayableDays(t *testing.T) {
	days := presentDays(t, 2025, time.June, 20)
	for i := 0; i < 4; i++ {
		date := time.Date(2025, time.June, 21+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		days = append(days, workedDay(t, date, "3", 0))
	}

	rec, err := Calculate(CalcInput{
		StaffID: "staff-1",
		Period:  NewPeriod(2025, time.June),
		Config:  monthlyConfig(),
		Days:    days,
	})
	require.NoError(t, err)

	assert.Equal(t, 24, rec.WorkingDays)
	assert.Equal(t, 4, rec.HalfDays)
	assert.Equal(t, 2, rec.AbsentDays)
	// 20 full days plus 4 half days at weight 0.5
	assert.Equal(t, "22.00", rec.PayableDays.StringFixed(2))
	assert.Equal(t, "25384.62", rec.BaseAmount.StringFixed(2))
}

func TestCalculateOvertime(t *testing.T) {
	cfg := monthlyConfig()
	cfg.StatutoryEligible = false
	days := presentDays(t, 2025, time.June, 23)
	days = append(days, workedDay(t, "2025-06-24", "10", 0))

	rec, err := Calculate(CalcInput{
		StaffID: "staff-1",
		Period:  NewPeriod(2025, time.June),
		Config:  cfg,
		Days:    days,
	})
	require.NoError(t, err)

	assert.Equal(t, "2.00", rec.OvertimeHours.StringFixed(2))
	// per-hour 30000/(26x8) = 144.2308, x2 hours x1.5 multiplier
	assert.Equal(t, "432.69", rec.OvertimeAmount.StringFixed(2))
	assert.Equal(t, rec.BaseAmount.Add(rec.OvertimeAmount).StringFixed(2), rec.GrossAmount.StringFixed(2))
}

func TestCalculateDeterministicUnderReordering(t *testing.T) {
	days := presentDays(t, 2025, time.June, 20)
	days = append(days, workedDay(t, "2025-06-25", "3", 15))

	input := CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: monthlyConfig(), Days: days}
	first, err := Calculate(input)
	require.NoError(t, err)

	reversed := make([]attendance.DayRecord, len(days))
	for i, day := range days {
		reversed[len(days)-1-i] = day
	}
	second, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: monthlyConfig(), Days: reversed})
	require.NoError(t, err)

	assert.True(t, first.NetAmount.Equal(second.NetAmount))
	assert.True(t, first.PayableDays.Equal(second.PayableDays))
	assert.Equal(t, first.WorkingDays, second.WorkingDays)
	assert.Equal(t, first.LateMinutes, second.LateMinutes)
}

func TestCalculateRejectsDuplicateDates(t *testing.T) {
	days := presentDays(t, 2025, time.June, 2)
	days = append(days, workedDay(t, "2025-06-01", "8", 0))

	_, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: monthlyConfig(), Days: days})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestCalculateRejectsRecordsOutsidePeriod(t *testing.T) {
	days := presentDays(t, 2025, time.June, 2)
	days = append(days, workedDay(t, "2025-07-01", "8", 0))

	_, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: monthlyConfig(), Days: days})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestCalculateRejectsInvalidConfig(t *testing.T) {
	cfg := monthlyConfig()
	cfg.ContractedDays = 0

	_, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: cfg, Days: nil})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConfiguration))
}

func TestCalculateEmptyMonthIsAllAbsent(t *testing.T) {
	cfg := monthlyConfig()
	cfg.AbsencePenaltyPerDay = dec("100")
	cfg.StatutoryEligible = false

	rec, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: cfg, Days: nil})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.WorkingDays)
	assert.Equal(t, 26, rec.AbsentDays)
	assert.Equal(t, "0.00", rec.BaseAmount.StringFixed(2))
	assert.Equal(t, "2600.00", rec.PenaltyAmount.StringFixed(2))
	assert.Equal(t, "-2600.00", rec.NetAmount.StringFixed(2))
}
