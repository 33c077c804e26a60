package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func scanLedgerEntry(row pgx.Row) (LedgerEntry, error) {
	var entry LedgerEntry
	var reversalOf *string
	err := row.Scan(
		&entry.ID, &entry.SalaryID, &entry.StaffID, &entry.Type,
		&entry.Amount, &entry.Reason, &reversalOf, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerEntry{}, ErrEntryNotFound
		}
		return LedgerEntry{}, err
	}
	if reversalOf != nil {
		entry.ReversalOf = *reversalOf
	}
	return entry, nil
}

// AppendLedgerEntry is a single insert; the table has no update or delete
// path, which keeps the audit trail intact.
func (s *Store) AppendLedgerEntry(ctx context.Context, entry LedgerEntry) (LedgerEntry, error) {
	var reversalOf any
	if entry.ReversalOf != "" {
		reversalOf = entry.ReversalOf
	}
	return scanLedgerEntry(s.DB.QueryRow(ctx, `
    INSERT INTO salary_ledger (salary_id, staff_id, entry_type, amount, reason, reversal_of, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, salary_id, staff_id, entry_type, amount, reason, reversal_of, created_by, created_at
  `, entry.SalaryID, entry.StaffID, entry.Type, entry.Amount, entry.Reason, reversalOf, entry.CreatedBy))
}

func (s *Store) LedgerEntries(ctx context.Context, salaryID string) ([]LedgerEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, salary_id, staff_id, entry_type, amount, reason, reversal_of, created_by, created_at
    FROM salary_ledger
    WHERE salary_id = $1
    ORDER BY created_at, id
  `, salaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) LedgerEntryByID(ctx context.Context, entryID string) (LedgerEntry, error) {
	return scanLedgerEntry(s.DB.QueryRow(ctx, `
    SELECT id, salary_id, staff_id, entry_type, amount, reason, reversal_of, created_by, created_at
    FROM salary_ledger
    WHERE id = $1
  `, entryID))
}
