package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BuildBreakdown expands a computed salary into its itemized entries. The
// set is regenerated wholesale on every recalculation, never patched.
// Earnings are positive, penalties and deductions negative, so the signed
// sum of the entries equals the record's net amount.
func BuildBreakdown(rec SalaryRecord, cfg CompensationConfig) []BreakdownEntry {
	entries := []BreakdownEntry{{
		SalaryID:    rec.ID,
		Type:        BreakdownBaseSalary,
		Description: fmt.Sprintf("Base salary for %s (%s payable days of %d contracted)", rec.Period, rec.PayableDays, cfg.ContractedDays),
		Amount:      rec.BaseAmount,
	}}

	if rec.OvertimeAmount.IsPositive() {
		entries = append(entries, BreakdownEntry{
			SalaryID:    rec.ID,
			Type:        BreakdownOvertime,
			Description: fmt.Sprintf("Overtime pay (%s hours at %sx)", rec.OvertimeHours, cfg.OvertimeMultiplier),
			Amount:      rec.OvertimeAmount,
		})
	}

	if late := latePenalty(cfg, rec.LateMinutes); late.IsPositive() {
		entries = append(entries, BreakdownEntry{
			SalaryID:    rec.ID,
			Type:        BreakdownLatePenalty,
			Description: fmt.Sprintf("Late penalty (%d minutes)", rec.LateMinutes),
			Amount:      late.Neg(),
		})
	}
	if absence := absencePenalty(cfg, rec.AbsentDays); absence.IsPositive() {
		entries = append(entries, BreakdownEntry{
			SalaryID:    rec.ID,
			Type:        BreakdownAbsenceDeduction,
			Description: fmt.Sprintf("Absence deduction (%d days)", rec.AbsentDays),
			Amount:      absence.Neg(),
		})
	}

	if pf := pfAmount(cfg, rec.BaseAmount); pf.IsPositive() {
		entries = append(entries, BreakdownEntry{
			SalaryID:    rec.ID,
			Type:        BreakdownProvidentFund,
			Description: fmt.Sprintf("Provident fund (%s%%)", cfg.PFPercent),
			Amount:      pf.Neg(),
		})
	}
	if esi := esiAmount(cfg, rec.BaseAmount); esi.IsPositive() {
		entries = append(entries, BreakdownEntry{
			SalaryID:    rec.ID,
			Type:        BreakdownStateInsurance,
			Description: fmt.Sprintf("Employee state insurance (%s%%)", cfg.ESIPercent),
			Amount:      esi.Neg(),
		})
	}
	return entries
}

func latePenalty(cfg CompensationConfig, lateMinutes int) decimal.Decimal {
	if !cfg.LatePenaltyPerMinute.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(lateMinutes)).Mul(cfg.LatePenaltyPerMinute)
}

func absencePenalty(cfg CompensationConfig, absentDays int) decimal.Decimal {
	if !cfg.AbsencePenaltyPerDay.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(absentDays)).Mul(cfg.AbsencePenaltyPerDay)
}

// VerifyBreakdown checks the reconciliation invariant: the signed entry sum
// must match the record's net amount within tolerance. A failure means the
// builder and calculator disagree; it is an integrity error, not user input.
func VerifyBreakdown(rec SalaryRecord, entries []BreakdownEntry) error {
	tolerance := decimal.RequireFromString(ReconcileTolerance)
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Amount)
	}
	if sum.Sub(rec.NetAmount).Abs().GreaterThan(tolerance) {
		return reconciliationError(fmt.Sprintf(
			"breakdown sum %s does not reconcile to net %s for salary %s (staff %s, period %s)",
			sum, rec.NetAmount, rec.ID, rec.StaffID, rec.Period,
		))
	}
	return nil
}
