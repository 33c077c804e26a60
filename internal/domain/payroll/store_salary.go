package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const salaryColumns = `
  r.id, r.staff_id, r.year, r.month,
  r.working_days, r.half_days, r.absent_days, r.payable_days,
  r.working_hours, r.overtime_hours, r.late_minutes,
  r.base_amount, r.overtime_amount, r.penalty_amount, r.deduction_amount,
  r.gross_amount, r.net_amount,
  r.status, r.paid_at, r.created_at, r.updated_at`

func scanSalary(row pgx.Row) (SalaryRecord, error) {
	var rec SalaryRecord
	var year, month int
	err := row.Scan(
		&rec.ID, &rec.StaffID, &year, &month,
		&rec.WorkingDays, &rec.HalfDays, &rec.AbsentDays, &rec.PayableDays,
		&rec.WorkingHours, &rec.OvertimeHours, &rec.LateMinutes,
		&rec.BaseAmount, &rec.OvertimeAmount, &rec.PenaltyAmount, &rec.DeductionAmount,
		&rec.GrossAmount, &rec.NetAmount,
		&rec.Status, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalaryRecord{}, ErrSalaryNotFound
		}
		return SalaryRecord{}, err
	}
	rec.Period = NewPeriod(year, time.Month(month))
	return rec, nil
}

func (s *Store) SalaryByID(ctx context.Context, companyID, salaryID string) (SalaryRecord, error) {
	return scanSalary(s.DB.QueryRow(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_records r
    JOIN staff st ON r.staff_id = st.id
    WHERE r.id = $1 AND st.company_id = $2
  `, salaryID, companyID))
}

func (s *Store) SalaryByStaffPeriod(ctx context.Context, staffID string, period Period) (SalaryRecord, error) {
	return scanSalary(s.DB.QueryRow(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_records r
    WHERE r.staff_id = $1 AND r.year = $2 AND r.month = $3
  `, staffID, period.Year, int(period.Month)))
}

func (s *Store) ListSalaries(ctx context.Context, companyID string, period Period, limit, offset int) ([]SalaryRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_records r
    JOIN staff st ON r.staff_id = st.id
    WHERE st.company_id = $1 AND r.year = $2 AND r.month = $3
    ORDER BY st.full_name
    LIMIT $4 OFFSET $5
  `, companyID, period.Year, int(period.Month), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalaryRecord
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveCalculation upserts the pending salary row for staff+period and
// regenerates the breakdown in one transaction. The unique constraint on
// (staff_id, year, month) plus the status guard in the upsert serialize
// concurrent recalculations: a record that left pending under our feet is
// reported as a state conflict, never partially overwritten.
func (s *Store) SaveCalculation(ctx context.Context, rec SalaryRecord, entries []BreakdownEntry) (SalaryRecord, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SalaryRecord{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO salary_records (
      staff_id, year, month,
      working_days, half_days, absent_days, payable_days,
      working_hours, overtime_hours, late_minutes,
      base_amount, overtime_amount, penalty_amount, deduction_amount,
      gross_amount, net_amount, status
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    ON CONFLICT (staff_id, year, month) DO UPDATE SET
      working_days = EXCLUDED.working_days,
      half_days = EXCLUDED.half_days,
      absent_days = EXCLUDED.absent_days,
      payable_days = EXCLUDED.payable_days,
      working_hours = EXCLUDED.working_hours,
      overtime_hours = EXCLUDED.overtime_hours,
      late_minutes = EXCLUDED.late_minutes,
      base_amount = EXCLUDED.base_amount,
      overtime_amount = EXCLUDED.overtime_amount,
      penalty_amount = EXCLUDED.penalty_amount,
      deduction_amount = EXCLUDED.deduction_amount,
      gross_amount = EXCLUDED.gross_amount,
      net_amount = EXCLUDED.net_amount,
      updated_at = now()
    WHERE salary_records.status = 'pending'
    RETURNING id
  `, rec.StaffID, rec.Period.Year, int(rec.Period.Month),
		rec.WorkingDays, rec.HalfDays, rec.AbsentDays, rec.PayableDays,
		rec.WorkingHours, rec.OvertimeHours, rec.LateMinutes,
		rec.BaseAmount, rec.OvertimeAmount, rec.PenaltyAmount, rec.DeductionAmount,
		rec.GrossAmount, rec.NetAmount, rec.Status).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalaryRecord{}, stateError(rec.StaffID, rec.Period, "salary record is no longer pending")
		}
		return SalaryRecord{}, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM salary_breakdowns WHERE salary_id = $1", id); err != nil {
		return SalaryRecord{}, err
	}
	for position, entry := range entries {
		if _, err := tx.Exec(ctx, `
      INSERT INTO salary_breakdowns (salary_id, entry_type, description, amount, position)
      VALUES ($1,$2,$3,$4,$5)
    `, id, entry.Type, entry.Description, entry.Amount, position); err != nil {
			return SalaryRecord{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return SalaryRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

func (s *Store) UpdateStatus(ctx context.Context, salaryID, status string, paidAt *time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salary_records
    SET status = $2, paid_at = COALESCE($3, paid_at), updated_at = now()
    WHERE id = $1
  `, salaryID, status, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSalaryNotFound
	}
	return nil
}

func (s *Store) Breakdown(ctx context.Context, salaryID string) ([]BreakdownEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT salary_id, entry_type, description, amount
    FROM salary_breakdowns
    WHERE salary_id = $1
    ORDER BY position
  `, salaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BreakdownEntry
	for rows.Next() {
		var entry BreakdownEntry
		if err := rows.Scan(&entry.SalaryID, &entry.Type, &entry.Description, &entry.Amount); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
