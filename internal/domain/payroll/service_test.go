package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffpay/internal/domain/attendance"
)

type fakeStore struct {
	salaries  map[string]SalaryRecord
	breakdown map[string][]BreakdownEntry
	ledger    []LedgerEntry
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		salaries:  map[string]SalaryRecord{},
		breakdown: map[string][]BreakdownEntry{},
	}
}

func (f *fakeStore) SalaryByID(_ context.Context, _, salaryID string) (SalaryRecord, error) {
	rec, ok := f.salaries[salaryID]
	if !ok {
		return SalaryRecord{}, ErrSalaryNotFound
	}
	return rec, nil
}

func (f *fakeStore) SalaryByStaffPeriod(_ context.Context, staffID string, period Period) (SalaryRecord, error) {
	for _, rec := range f.salaries {
		if rec.StaffID == staffID && rec.Period == period {
			return rec, nil
		}
	}
	return SalaryRecord{}, ErrSalaryNotFound
}

func (f *fakeStore) ListSalaries(_ context.Context, _ string, period Period, _, _ int) ([]SalaryRecord, error) {
	var out []SalaryRecord
	for _, rec := range f.salaries {
		if rec.Period == period {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveCalculation(ctx context.Context, rec SalaryRecord, entries []BreakdownEntry) (SalaryRecord, error) {
	if existing, err := f.SalaryByStaffPeriod(ctx, rec.StaffID, rec.Period); err == nil {
		if existing.Status != StatusPending {
			return SalaryRecord{}, stateError(rec.StaffID, rec.Period, "salary record is no longer pending")
		}
		rec.ID = existing.ID
	} else {
		f.nextID++
		rec.ID = fmt.Sprintf("sal-%d", f.nextID)
	}
	f.salaries[rec.ID] = rec
	f.breakdown[rec.ID] = entries
	return rec, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, salaryID, status string, paidAt *time.Time) error {
	rec, ok := f.salaries[salaryID]
	if !ok {
		return ErrSalaryNotFound
	}
	rec.Status = status
	rec.PaidAt = paidAt
	f.salaries[salaryID] = rec
	return nil
}

func (f *fakeStore) Breakdown(_ context.Context, salaryID string) ([]BreakdownEntry, error) {
	return f.breakdown[salaryID], nil
}

func (f *fakeStore) AppendLedgerEntry(_ context.Context, entry LedgerEntry) (LedgerEntry, error) {
	f.nextID++
	entry.ID = fmt.Sprintf("led-%d", f.nextID)
	entry.CreatedAt = time.Now()
	f.ledger = append(f.ledger, entry)
	return entry, nil
}

func (f *fakeStore) LedgerEntries(_ context.Context, salaryID string) ([]LedgerEntry, error) {
	var out []LedgerEntry
	for _, entry := range f.ledger {
		if entry.SalaryID == salaryID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeStore) LedgerEntryByID(_ context.Context, entryID string) (LedgerEntry, error) {
	for _, entry := range f.ledger {
		if entry.ID == entryID {
			return entry, nil
		}
	}
	return LedgerEntry{}, ErrEntryNotFound
}

type fakeAttendance struct {
	days []attendance.DayRecord
}

func (f *fakeAttendance) MonthRecords(_ context.Context, _ string, _ int, _ time.Month) ([]attendance.DayRecord, error) {
	return f.days, nil
}

type fakeConfigs struct {
	cfg CompensationConfig
}

func (f *fakeConfigs) EffectiveConfig(_ context.Context, _ string) (CompensationConfig, error) {
	return f.cfg, nil
}

type fakeNotifier struct {
	paid []string
}

func (f *fakeNotifier) SalaryPaid(_ context.Context, _, salaryID, _, _ string) error {
	f.paid = append(f.paid, salaryID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeNotifier) {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeAttendance{days: presentDays(t, 2025, time.June, 24)}, &fakeConfigs{cfg: monthlyConfig()}, notifier)
	return svc, store, notifier
}

func TestRunCalculationPersistsRecordAndBreakdown(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	rec, entries, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPending, rec.Status)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.Equal(t, rec.ID, entry.SalaryID)
	}
	assert.Len(t, store.salaries, 1)
}

func TestRunCalculationOverwritesPendingRecord(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	first, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)
	second, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.salaries, 1)
}

func TestRunCalculationRefusesNonPendingRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "co-1", rec.ID)
	require.NoError(t, err)

	_, _, err = svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState))
}

func TestTransitionLifecycle(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)

	// paying a pending record is not allowed
	_, err = svc.MarkPaid(ctx, "co-1", rec.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState))

	approved, err := svc.Approve(ctx, "co-1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	paid, err := svc.MarkPaid(ctx, "co-1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, []string{rec.ID}, notifier.paid)

	// terminal: no further transitions
	_, err = svc.Approve(ctx, "co-1", rec.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState))
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)
	_, err = svc.Reject(ctx, "co-1", rec.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "co-1", rec.ID)
	require.Error(t, err)
	_, err = svc.MarkPaid(ctx, "co-1", rec.ID)
	require.Error(t, err)
}

func TestPostingGatedOnStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)

	_, err = svc.PostPayment(ctx, "co-1", rec.ID, dec("100"), "early payout", "admin-1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState))

	_, err = svc.Approve(ctx, "co-1", rec.ID)
	require.NoError(t, err)

	entry, err := svc.PostPayment(ctx, "co-1", rec.ID, dec("100"), "advance", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "-100", entry.Amount.String())
	assert.Equal(t, rec.StaffID, entry.StaffID)
}

func TestReversalRoundTripsThroughReconciliation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.RunCalculation(ctx, "staff-1", NewPeriod(2025, time.June))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "co-1", rec.ID)
	require.NoError(t, err)

	payment, err := svc.PostPayment(ctx, "co-1", rec.ID, dec("5000"), "partial payout", "admin-1")
	require.NoError(t, err)

	reversal, err := svc.PostReversal(ctx, "co-1", payment.ID, "wrong account", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, reversal.ReversalOf)

	recon, err := svc.ReconcileSalary(ctx, "co-1", rec.ID)
	require.NoError(t, err)
	assert.True(t, recon.Balance.Equal(rec.NetAmount), "reversal must restore the outstanding balance")
	assert.Equal(t, 2, recon.EntryCount)
}

func TestLedgerUnknownSalary(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Ledger(context.Background(), "co-1", "missing")
	assert.ErrorIs(t, err, ErrSalaryNotFound)
}
