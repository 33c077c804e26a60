package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sign convention for ledger amounts, applied everywhere:
//
//	PAYMENT    negative  cash paid out to staff, settles the debt
//	DEDUCTION  negative  non-cash settlement (statutory remittance etc.)
//	RECOVERY   positive  money clawed back from a payment, re-opens the debt
//
// The outstanding balance is netAmount + sum(amounts), which is exactly
// net - totalPaid + totalRecovered. Addition commutes, so Reconcile is
// independent of entry order.

// SignedAmount converts a positive magnitude into the stored signed amount
// for an entry type.
func SignedAmount(entryType string, magnitude decimal.Decimal) (decimal.Decimal, error) {
	if !magnitude.IsPositive() {
		return decimal.Zero, validationError("", Period{}, "amount", "ledger amount must be a positive magnitude")
	}
	switch entryType {
	case LedgerPayment, LedgerDeduction:
		return magnitude.Neg(), nil
	case LedgerRecovery:
		return magnitude, nil
	}
	return decimal.Zero, validationError("", Period{}, "type", fmt.Sprintf("unknown ledger entry type %q", entryType))
}

// AuthorizePosting is the state gate the persistence boundary must consult
// before inserting a ledger row: only approved or paid salaries accept
// postings.
func AuthorizePosting(rec SalaryRecord) error {
	switch rec.Status {
	case StatusApproved, StatusPaid:
		return nil
	}
	return stateError(rec.StaffID, rec.Period, "cannot post ledger entries against a "+rec.Status+" salary record")
}

// Reversal builds the inverse of an existing entry. The original is never
// edited or deleted; the new entry carries the inverted amount and a
// back-reference to what it undoes.
func Reversal(original LedgerEntry, reason, actorID string) LedgerEntry {
	return LedgerEntry{
		SalaryID:   original.SalaryID,
		StaffID:    original.StaffID,
		Type:       original.Type,
		Amount:     original.Amount.Neg(),
		Reason:     fmt.Sprintf("reversal of %s: %s", original.ID, reason),
		ReversalOf: original.ID,
		CreatedBy:  actorID,
	}
}

// Reconcile folds the full ledger history of a salary into paid, deducted,
// recovered totals and the outstanding balance. Pure and replayable from
// the append-only log; any permutation of entries yields the same result.
func Reconcile(rec SalaryRecord, entries []LedgerEntry) Reconciliation {
	out := Reconciliation{
		SalaryID:       rec.ID,
		NetAmount:      rec.NetAmount,
		TotalPaid:      decimal.Zero,
		TotalDeducted:  decimal.Zero,
		TotalRecovered: decimal.Zero,
		Balance:        rec.NetAmount,
		EntryCount:     len(entries),
	}
	for _, entry := range entries {
		out.Balance = out.Balance.Add(entry.Amount)
		switch entry.Type {
		case LedgerPayment:
			out.TotalPaid = out.TotalPaid.Sub(entry.Amount)
		case LedgerDeduction:
			out.TotalDeducted = out.TotalDeducted.Sub(entry.Amount)
		case LedgerRecovery:
			out.TotalRecovered = out.TotalRecovered.Add(entry.Amount)
		}
	}
	return out
}
