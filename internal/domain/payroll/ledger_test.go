package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidRecord(net string) SalaryRecord {
	return SalaryRecord{
		ID:        "sal-1",
		StaffID:   "staff-1",
		NetAmount: dec(net),
		Status:    StatusPaid,
	}
}

func TestSignedAmountConvention(t *testing.T) {
	payment, err := SignedAmount(LedgerPayment, dec("20000"))
	require.NoError(t, err)
	assert.Equal(t, "-20000", payment.String())

	deduction, err := SignedAmount(LedgerDeduction, dec("350"))
	require.NoError(t, err)
	assert.Equal(t, "-350", deduction.String())

	recovery, err := SignedAmount(LedgerRecovery, dec("500"))
	require.NoError(t, err)
	assert.Equal(t, "500", recovery.String())
}

func TestSignedAmountRejectsNonPositiveMagnitudes(t *testing.T) {
	for _, raw := range []string{"0", "-10"} {
		_, err := SignedAmount(LedgerPayment, dec(raw))
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	}

	_, err := SignedAmount("TRANSFER", dec("10"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestAuthorizePostingRequiresApprovedOrPaid(t *testing.T) {
	for status, wantErr := range map[string]bool{
		StatusPending:  true,
		StatusRejected: true,
		StatusApproved: false,
		StatusPaid:     false,
	} {
		rec := paidRecord("20000")
		rec.Status = status
		err := AuthorizePosting(rec)
		if wantErr {
			require.Error(t, err, status)
			assert.True(t, IsKind(err, KindState))
		} else {
			require.NoError(t, err, status)
		}
	}
}

func TestReconcilePaymentAndRecovery(t *testing.T) {
	rec := paidRecord("20000")
	entries := []LedgerEntry{
		{SalaryID: "sal-1", Type: LedgerPayment, Amount: dec("-20000")},
		{SalaryID: "sal-1", Type: LedgerRecovery, Amount: dec("500")},
	}

	recon := Reconcile(rec, entries)
	assert.Equal(t, "20000.00", recon.TotalPaid.StringFixed(2))
	assert.Equal(t, "500.00", recon.TotalRecovered.StringFixed(2))
	assert.Equal(t, "0.00", recon.TotalDeducted.StringFixed(2))
	assert.Equal(t, "500.00", recon.Balance.StringFixed(2))
	assert.Equal(t, 2, recon.EntryCount)
}

func TestReconcileIsPermutationInvariant(t *testing.T) {
	rec := paidRecord("20000")
	entries := []LedgerEntry{
		{Type: LedgerPayment, Amount: dec("-15000")},
		{Type: LedgerDeduction, Amount: dec("-350")},
		{Type: LedgerRecovery, Amount: dec("500")},
		{Type: LedgerPayment, Amount: dec("-5000")},
	}

	baseline := Reconcile(rec, entries)
	permutations := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	for _, order := range permutations {
		shuffled := make([]LedgerEntry, len(entries))
		for i, idx := range order {
			shuffled[i] = entries[idx]
		}
		recon := Reconcile(rec, shuffled)
		assert.True(t, recon.Balance.Equal(baseline.Balance))
		assert.True(t, recon.TotalPaid.Equal(baseline.TotalPaid))
		assert.True(t, recon.TotalDeducted.Equal(baseline.TotalDeducted))
		assert.True(t, recon.TotalRecovered.Equal(baseline.TotalRecovered))
	}
}

func TestReconcileEmptyLedger(t *testing.T) {
	rec := paidRecord("12345.67")
	recon := Reconcile(rec, nil)
	assert.True(t, recon.Balance.Equal(rec.NetAmount))
	assert.Equal(t, 0, recon.EntryCount)
}

func TestReversalInvertsWithoutMutatingOriginal(t *testing.T) {
	original := LedgerEntry{
		ID:       "led-1",
		SalaryID: "sal-1",
		StaffID:  "staff-1",
		Type:     LedgerPayment,
		Amount:   dec("-20000"),
		Reason:   "June payout",
	}

	reversal := Reversal(original, "duplicate transfer", "admin-1")
	assert.Equal(t, "led-1", reversal.ReversalOf)
	assert.Equal(t, LedgerPayment, reversal.Type)
	assert.True(t, reversal.Amount.Equal(dec("20000")))
	assert.Equal(t, "admin-1", reversal.CreatedBy)
	assert.Contains(t, reversal.Reason, "led-1")
	assert.Contains(t, reversal.Reason, "duplicate transfer")

	// original untouched
	assert.True(t, original.Amount.Equal(dec("-20000")))
	assert.Empty(t, original.ReversalOf)

	// posting the pair books to zero
	rec := paidRecord("20000")
	recon := Reconcile(rec, []LedgerEntry{original, reversal})
	assert.True(t, recon.Balance.Equal(decimal.RequireFromString("20000")))
}
