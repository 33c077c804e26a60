package attendance

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

const dayColumns = `
  id, staff_id, date, punch_in, punch_out, working_hours, late_minutes,
  status, COALESCE(approved_by::text, ''), created_at, updated_at`

func scanDay(row pgx.Row) (DayRecord, error) {
	var rec DayRecord
	err := row.Scan(
		&rec.ID, &rec.StaffID, &rec.Date, &rec.PunchIn, &rec.PunchOut, &rec.WorkingHours,
		&rec.LateMinutes, &rec.Status, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return DayRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) RecordByID(ctx context.Context, recordID string) (DayRecord, error) {
	return scanDay(s.DB.QueryRow(ctx, `
    SELECT `+dayColumns+`
    FROM attendance_records
    WHERE id = $1
  `, recordID))
}

func (s *Store) RecordForDate(ctx context.Context, staffID string, date time.Time) (DayRecord, error) {
	return scanDay(s.DB.QueryRow(ctx, `
    SELECT `+dayColumns+`
    FROM attendance_records
    WHERE staff_id = $1 AND date = $2
  `, staffID, date))
}

// MonthRecords returns one calendar month ordered by date. It satisfies
// payroll.AttendanceSource.
func (s *Store) MonthRecords(ctx context.Context, staffID string, year int, month time.Month) ([]DayRecord, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := s.DB.Query(ctx, `
    SELECT `+dayColumns+`
    FROM attendance_records
    WHERE staff_id = $1 AND date >= $2 AND date < $3
    ORDER BY date
  `, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		rec, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CreatePunchIn(ctx context.Context, staffID string, date time.Time, punchIn time.Time, lateMinutes int) (DayRecord, error) {
	return scanDay(s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (staff_id, date, punch_in, late_minutes, status)
    VALUES ($1, $2, $3, $4, 'pending')
    RETURNING `+dayColumns+`
  `, staffID, date, punchIn, lateMinutes))
}

func (s *Store) SetPunchOut(ctx context.Context, recordID string, punchOut time.Time, workingHours string) (DayRecord, error) {
	return scanDay(s.DB.QueryRow(ctx, `
    UPDATE attendance_records
    SET punch_out = $2, working_hours = $3::numeric, updated_at = now()
    WHERE id = $1
    RETURNING `+dayColumns+`
  `, recordID, punchOut, workingHours))
}

func (s *Store) SetReviewStatus(ctx context.Context, recordID, status, approverID string) (DayRecord, error) {
	return scanDay(s.DB.QueryRow(ctx, `
    UPDATE attendance_records
    SET status = $2, approved_by = $3, updated_at = now()
    WHERE id = $1
    RETURNING `+dayColumns+`
  `, recordID, status, approverID))
}

// PeriodClosed reports whether the staff member's salary for the date's
// month has already been approved or paid. Attendance for a closed period
// is immutable.
func (s *Store) PeriodClosed(ctx context.Context, staffID string, date time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM salary_records
    WHERE staff_id = $1 AND year = $2 AND month = $3 AND status IN ('approved', 'paid')
  `, staffID, date.Year(), int(date.Month())).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
