package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Service orchestrates the pure calculation core against the persistence
// boundary: it fetches inputs, runs the calculator, and hands results to
// the store. State preconditions are validated here before any write is
// authorized.
type Service struct {
	store      StoreAPI
	attendance AttendanceSource
	configs    ConfigSource
	notifier   Notifier
	now        func() time.Time
}

func NewService(store StoreAPI, att AttendanceSource, configs ConfigSource, notifier Notifier) *Service {
	return &Service{
		store:      store,
		attendance: att,
		configs:    configs,
		notifier:   notifier,
		now:        time.Now,
	}
}

// RunCalculation computes (or recomputes) the salary for one staff+period.
// Recalculation overwrites only a pending record; an approved, paid, or
// rejected record rejects the run with a state error. The salary row and
// its breakdown are persisted atomically by the store.
func (s *Service) RunCalculation(ctx context.Context, staffID string, period Period) (SalaryRecord, []BreakdownEntry, error) {
	existing, err := s.store.SalaryByStaffPeriod(ctx, staffID, period)
	switch {
	case err == nil:
		if gateErr := existing.EnsureRecalculable(); gateErr != nil {
			return SalaryRecord{}, nil, gateErr
		}
	case errors.Is(err, ErrSalaryNotFound):
	default:
		return SalaryRecord{}, nil, err
	}

	cfg, err := s.configs.EffectiveConfig(ctx, staffID)
	if err != nil {
		return SalaryRecord{}, nil, err
	}
	days, err := s.attendance.MonthRecords(ctx, staffID, period.Year, period.Month)
	if err != nil {
		return SalaryRecord{}, nil, err
	}

	rec, err := Calculate(CalcInput{StaffID: staffID, Period: period, Config: cfg, Days: days})
	if err != nil {
		return SalaryRecord{}, nil, err
	}
	entries := BuildBreakdown(rec, cfg)
	if err := VerifyBreakdown(rec, entries); err != nil {
		return SalaryRecord{}, nil, err
	}

	saved, err := s.store.SaveCalculation(ctx, rec, entries)
	if err != nil {
		return SalaryRecord{}, nil, err
	}
	for i := range entries {
		entries[i].SalaryID = saved.ID
	}
	return saved, entries, nil
}

func (s *Service) Salary(ctx context.Context, companyID, salaryID string) (SalaryRecord, error) {
	return s.store.SalaryByID(ctx, companyID, salaryID)
}

func (s *Service) ListSalaries(ctx context.Context, companyID string, period Period, limit, offset int) ([]SalaryRecord, error) {
	return s.store.ListSalaries(ctx, companyID, period, limit, offset)
}

func (s *Service) Breakdown(ctx context.Context, companyID, salaryID string) ([]BreakdownEntry, error) {
	if _, err := s.store.SalaryByID(ctx, companyID, salaryID); err != nil {
		return nil, err
	}
	return s.store.Breakdown(ctx, salaryID)
}

// Approve moves a pending record to approved. Transitions are monotonic;
// anything else is rejected with a state error.
func (s *Service) Approve(ctx context.Context, companyID, salaryID string) (SalaryRecord, error) {
	return s.transition(ctx, companyID, salaryID, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, companyID, salaryID string) (SalaryRecord, error) {
	return s.transition(ctx, companyID, salaryID, StatusRejected)
}

// MarkPaid finalizes an approved record and notifies the staff member.
// Notification failure does not undo the transition.
func (s *Service) MarkPaid(ctx context.Context, companyID, salaryID string) (SalaryRecord, error) {
	rec, err := s.transition(ctx, companyID, salaryID, StatusPaid)
	if err != nil {
		return SalaryRecord{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.SalaryPaid(ctx, rec.StaffID, rec.ID, rec.Period.String(), rec.NetAmount.StringFixed(2)); err != nil {
			slog.Warn("salary paid notification failed", "salaryId", rec.ID, "err", err)
		}
	}
	return rec, nil
}

func (s *Service) transition(ctx context.Context, companyID, salaryID, to string) (SalaryRecord, error) {
	rec, err := s.store.SalaryByID(ctx, companyID, salaryID)
	if err != nil {
		return SalaryRecord{}, err
	}
	if !rec.CanTransition(to) {
		return SalaryRecord{}, stateError(rec.StaffID, rec.Period, "cannot move a "+rec.Status+" salary record to "+to)
	}
	var paidAt *time.Time
	if to == StatusPaid {
		now := s.now().UTC()
		paidAt = &now
	}
	if err := s.store.UpdateStatus(ctx, rec.ID, to, paidAt); err != nil {
		return SalaryRecord{}, err
	}
	rec.Status = to
	rec.PaidAt = paidAt
	return rec, nil
}

// PostPayment appends a PAYMENT entry for a positive magnitude. The salary
// must be approved or paid; the record's own amounts are never mutated.
func (s *Service) PostPayment(ctx context.Context, companyID, salaryID string, amount decimal.Decimal, reason, actorID string) (LedgerEntry, error) {
	return s.post(ctx, companyID, salaryID, LedgerPayment, amount, reason, actorID)
}

func (s *Service) PostDeduction(ctx context.Context, companyID, salaryID string, amount decimal.Decimal, reason, actorID string) (LedgerEntry, error) {
	return s.post(ctx, companyID, salaryID, LedgerDeduction, amount, reason, actorID)
}

func (s *Service) PostRecovery(ctx context.Context, companyID, salaryID string, amount decimal.Decimal, reason, actorID string) (LedgerEntry, error) {
	return s.post(ctx, companyID, salaryID, LedgerRecovery, amount, reason, actorID)
}

func (s *Service) post(ctx context.Context, companyID, salaryID, entryType string, amount decimal.Decimal, reason, actorID string) (LedgerEntry, error) {
	rec, err := s.store.SalaryByID(ctx, companyID, salaryID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if err := AuthorizePosting(rec); err != nil {
		return LedgerEntry{}, err
	}
	signed, err := SignedAmount(entryType, amount)
	if err != nil {
		return LedgerEntry{}, err
	}
	return s.store.AppendLedgerEntry(ctx, LedgerEntry{
		SalaryID:  rec.ID,
		StaffID:   rec.StaffID,
		Type:      entryType,
		Amount:    signed,
		Reason:    reason,
		CreatedBy: actorID,
	})
}

// PostReversal appends the inverse of an existing entry. The original row
// stays untouched; the ledger remains append-only.
func (s *Service) PostReversal(ctx context.Context, companyID, entryID, reason, actorID string) (LedgerEntry, error) {
	original, err := s.store.LedgerEntryByID(ctx, entryID)
	if err != nil {
		return LedgerEntry{}, err
	}
	rec, err := s.store.SalaryByID(ctx, companyID, original.SalaryID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if err := AuthorizePosting(rec); err != nil {
		return LedgerEntry{}, err
	}
	return s.store.AppendLedgerEntry(ctx, Reversal(original, reason, actorID))
}

func (s *Service) Ledger(ctx context.Context, companyID, salaryID string) ([]LedgerEntry, error) {
	if _, err := s.store.SalaryByID(ctx, companyID, salaryID); err != nil {
		return nil, err
	}
	return s.store.LedgerEntries(ctx, salaryID)
}

// ReconcileSalary replays the full ledger log against the record's net
// amount. Read-only and always recomputable.
func (s *Service) ReconcileSalary(ctx context.Context, companyID, salaryID string) (Reconciliation, error) {
	rec, err := s.store.SalaryByID(ctx, companyID, salaryID)
	if err != nil {
		return Reconciliation{}, err
	}
	entries, err := s.store.LedgerEntries(ctx, salaryID)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconcile(rec, entries), nil
}
