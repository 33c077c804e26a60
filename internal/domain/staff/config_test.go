package staff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"staffpay/internal/domain/company"
	"staffpay/internal/domain/payroll"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func dp(value string) *decimal.Decimal {
	parsed := d(value)
	return &parsed
}

func testPolicy() company.PayPolicy {
	return company.PayPolicy{
		ContractedDays:       26,
		StandardHoursPerDay:  d("8"),
		WorkdayStart:         "09:00",
		HalfDayHourThreshold: d("4"),
		HalfDayWeight:        d("0.5"),
		OvertimeMultiplier:   d("1.5"),
		LatePenaltyPerMinute: d("2"),
		AbsencePenaltyPerDay: d("0"),
		PFPercent:            d("12"),
		ESIPercent:           d("0.75"),
		ESIWageCeiling:       d("21000"),
	}
}

func TestEffectiveConfigUsesPolicyDefaults(t *testing.T) {
	member := Staff{PayType: payroll.PayMonthly, MonthlySalary: dp("30000"), StatutoryEligible: true}

	cfg := EffectiveConfig(testPolicy(), member, Override{})

	assert.Equal(t, payroll.PayMonthly, cfg.Basis.Type)
	assert.True(t, cfg.Basis.Rate.Equal(d("30000")))
	assert.Equal(t, 26, cfg.ContractedDays)
	assert.True(t, cfg.HalfDayWeight.Equal(d("0.5")))
	assert.True(t, cfg.PFPercent.Equal(d("12")))
	assert.True(t, cfg.StatutoryEligible)
}

func TestEffectiveConfigAppliesOverrides(t *testing.T) {
	member := Staff{PayType: payroll.PayDaily, DailyRate: dp("1000")}
	days := 22
	override := Override{
		ContractedDays:       &days,
		HalfDayWeight:        dp("0.6"),
		LatePenaltyPerMinute: dp("5"),
		PFPercent:            dp("10"),
	}

	cfg := EffectiveConfig(testPolicy(), member, override)

	assert.Equal(t, payroll.PayDaily, cfg.Basis.Type)
	assert.True(t, cfg.Basis.Rate.Equal(d("1000")))
	assert.Equal(t, 22, cfg.ContractedDays)
	assert.True(t, cfg.HalfDayWeight.Equal(d("0.6")))
	assert.True(t, cfg.LatePenaltyPerMinute.Equal(d("5")))
	assert.True(t, cfg.PFPercent.Equal(d("10")))
	// non-overridden fields keep policy values
	assert.True(t, cfg.ESIPercent.Equal(d("0.75")))
	assert.True(t, cfg.OvertimeMultiplier.Equal(d("1.5")))
}

func TestEffectiveConfigMissingRateIsZero(t *testing.T) {
	member := Staff{PayType: payroll.PayHourly}

	cfg := EffectiveConfig(testPolicy(), member, Override{})

	assert.Equal(t, payroll.PayHourly, cfg.Basis.Type)
	assert.True(t, cfg.Basis.Rate.IsZero())
	// the calculator rejects it downstream
	assert.Error(t, cfg.Validate())
}
