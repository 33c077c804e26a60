package payroll

import (
	"context"
	"time"

	"staffpay/internal/domain/attendance"
)

// StoreAPI is the persistence boundary for salary records and their
// ledgers. The service depends on this interface so tests can run against
// an in-memory fake.
type StoreAPI interface {
	SalaryByID(ctx context.Context, companyID, salaryID string) (SalaryRecord, error)
	SalaryByStaffPeriod(ctx context.Context, staffID string, period Period) (SalaryRecord, error)
	ListSalaries(ctx context.Context, companyID string, period Period, limit, offset int) ([]SalaryRecord, error)

	// SaveCalculation inserts or replaces the pending salary row for the
	// record's staff+period and regenerates its breakdown atomically.
	SaveCalculation(ctx context.Context, rec SalaryRecord, entries []BreakdownEntry) (SalaryRecord, error)
	UpdateStatus(ctx context.Context, salaryID, status string, paidAt *time.Time) error

	Breakdown(ctx context.Context, salaryID string) ([]BreakdownEntry, error)

	// Ledger rows are insert-only; there is no update or delete.
	AppendLedgerEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)
	LedgerEntries(ctx context.Context, salaryID string) ([]LedgerEntry, error)
	LedgerEntryByID(ctx context.Context, entryID string) (LedgerEntry, error)
}

// AttendanceSource supplies one month of attendance records for a staff
// member. The payroll core never writes attendance. The signature avoids
// payroll types so the attendance store satisfies it directly.
type AttendanceSource interface {
	MonthRecords(ctx context.Context, staffID string, year int, month time.Month) ([]attendance.DayRecord, error)
}

// ConfigSource supplies the effective compensation configuration (company
// policy defaults merged with per-staff overrides) at calculation time.
type ConfigSource interface {
	EffectiveConfig(ctx context.Context, staffID string) (CompensationConfig, error)
}

// Notifier is told after a salary transitions to paid. Delivery failures
// are logged by the service, never surfaced to the caller.
type Notifier interface {
	SalaryPaid(ctx context.Context, staffID, salaryID, period, amount string) error
}
