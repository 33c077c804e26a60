package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calculated(t *testing.T, cfg CompensationConfig) SalaryRecord {
	t.Helper()
	days := presentDays(t, 2025, time.June, 24)
	rec, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: cfg, Days: days})
	require.NoError(t, err)
	return rec
}

func entrySum(entries []BreakdownEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Amount)
	}
	return sum
}

func TestBreakdownSumsToNet(t *testing.T) {
	configs := map[string]CompensationConfig{
		"statutory": monthlyConfig(),
		"penalties": func() CompensationConfig {
			cfg := monthlyConfig()
			cfg.LatePenaltyPerMinute = dec("2")
			cfg.AbsencePenaltyPerDay = dec("150")
			return cfg
		}(),
		"bare": func() CompensationConfig {
			cfg := monthlyConfig()
			cfg.StatutoryEligible = false
			return cfg
		}(),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			days := presentDays(t, 2025, time.June, 23)
			days = append(days, workedDay(t, "2025-06-24", "10", 30))
			rec, err := Calculate(CalcInput{StaffID: "staff-1", Period: NewPeriod(2025, time.June), Config: cfg, Days: days})
			require.NoError(t, err)

			entries := BuildBreakdown(rec, cfg)
			require.NoError(t, VerifyBreakdown(rec, entries))
			assert.True(t, entrySum(entries).Equal(rec.NetAmount),
				"entries sum %s, net %s", entrySum(entries), rec.NetAmount)
		})
	}
}

func TestBreakdownOmitsZeroEntries(t *testing.T) {
	cfg := monthlyConfig()
	cfg.StatutoryEligible = false
	rec := calculated(t, cfg)

	entries := BuildBreakdown(rec, cfg)
	require.Len(t, entries, 1)
	assert.Equal(t, BreakdownBaseSalary, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(rec.BaseAmount))
}

func TestBreakdownDeductionsAreNegative(t *testing.T) {
	cfg := monthlyConfig()
	rec := calculated(t, cfg)

	entries := BuildBreakdown(rec, cfg)
	byType := map[string]BreakdownEntry{}
	for _, entry := range entries {
		byType[entry.Type] = entry
	}

	require.Contains(t, byType, BreakdownProvidentFund)
	require.Contains(t, byType, BreakdownStateInsurance)
	assert.True(t, byType[BreakdownProvidentFund].Amount.IsNegative())
	assert.True(t, byType[BreakdownStateInsurance].Amount.IsNegative())
	// ESI applies the wage ceiling: 21000 x 0.75%
	assert.Equal(t, "-157.50", byType[BreakdownStateInsurance].Amount.StringFixed(2))
}

func TestVerifyBreakdownDetectsDrift(t *testing.T) {
	cfg := monthlyConfig()
	rec := calculated(t, cfg)

	entries := BuildBreakdown(rec, cfg)
	entries[0].Amount = entries[0].Amount.Add(dec("5"))

	err := VerifyBreakdown(rec, entries)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindReconciliation))
}

func TestVerifyBreakdownToleratesRoundingDrift(t *testing.T) {
	cfg := monthlyConfig()
	rec := calculated(t, cfg)

	entries := BuildBreakdown(rec, cfg)
	entries[0].Amount = entries[0].Amount.Add(dec("0.005"))

	require.NoError(t, VerifyBreakdown(rec, entries))
}
