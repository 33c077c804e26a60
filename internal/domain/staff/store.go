package staff

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/attendance"
	"staffpay/internal/domain/company"
	"staffpay/internal/domain/payroll"
)

var ErrNotFound = errors.New("staff member not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const staffColumns = `
  id, company_id, COALESCE(user_id::text, ''), full_name, email, designation, status, created_at,
  pay_type, monthly_salary, hourly_rate, daily_rate, statutory_eligible`

func scanStaff(row pgx.Row) (Staff, error) {
	var out Staff
	err := row.Scan(
		&out.ID, &out.CompanyID, &out.UserID, &out.FullName, &out.Email, &out.Designation, &out.Status, &out.CreatedAt,
		&out.PayType, &out.MonthlySalary, &out.HourlyRate, &out.DailyRate, &out.StatutoryEligible,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, ErrNotFound
	}
	return out, err
}

func (s *Store) Member(ctx context.Context, companyID, staffID string) (Staff, error) {
	return scanStaff(s.DB.QueryRow(ctx, `
    SELECT `+staffColumns+`
    FROM staff
    WHERE id = $1 AND company_id = $2
  `, staffID, companyID))
}

func (s *Store) MemberByID(ctx context.Context, staffID string) (Staff, error) {
	return scanStaff(s.DB.QueryRow(ctx, `
    SELECT `+staffColumns+`
    FROM staff
    WHERE id = $1
  `, staffID))
}

func (s *Store) MemberByUser(ctx context.Context, userID string) (Staff, error) {
	return scanStaff(s.DB.QueryRow(ctx, `
    SELECT `+staffColumns+`
    FROM staff
    WHERE user_id = $1
  `, userID))
}

func (s *Store) ListMembers(ctx context.Context, companyID string, limit, offset int) ([]Staff, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+staffColumns+`
    FROM staff
    WHERE company_id = $1
    ORDER BY full_name
    LIMIT $2 OFFSET $3
  `, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, rows.Err()
}

func (s *Store) CreateMember(ctx context.Context, member Staff) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO staff (company_id, user_id, full_name, email, designation, status,
                       pay_type, monthly_salary, hourly_rate, daily_rate, statutory_eligible)
    VALUES ($1, NULLIF($2,'')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    RETURNING id
  `, member.CompanyID, member.UserID, member.FullName, member.Email, member.Designation, member.Status,
		member.PayType, member.MonthlySalary, member.HourlyRate, member.DailyRate, member.StatutoryEligible).Scan(&id)
	return id, err
}

func (s *Store) UpdateCompensation(ctx context.Context, companyID, staffID string, member Staff, override Override) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE staff SET
      pay_type = $3, monthly_salary = $4, hourly_rate = $5, daily_rate = $6,
      statutory_eligible = $7,
      ov_contracted_days = $8, ov_half_day_hour_threshold = $9, ov_half_day_weight = $10,
      ov_overtime_multiplier = $11, ov_late_penalty_per_minute = $12,
      ov_absence_penalty_per_day = $13, ov_pf_percent = $14, ov_esi_percent = $15
    WHERE id = $1 AND company_id = $2
  `, staffID, companyID,
		member.PayType, member.MonthlySalary, member.HourlyRate, member.DailyRate,
		member.StatutoryEligible,
		override.ContractedDays, override.HalfDayHourThreshold, override.HalfDayWeight,
		override.OvertimeMultiplier, override.LatePenaltyPerMinute,
		override.AbsencePenaltyPerDay, override.PFPercent, override.ESIPercent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) OverrideFor(ctx context.Context, staffID string) (Override, error) {
	var out Override
	err := s.DB.QueryRow(ctx, `
    SELECT ov_contracted_days, ov_half_day_hour_threshold, ov_half_day_weight,
           ov_overtime_multiplier, ov_late_penalty_per_minute,
           ov_absence_penalty_per_day, ov_pf_percent, ov_esi_percent
    FROM staff
    WHERE id = $1
  `, staffID).Scan(
		&out.ContractedDays, &out.HalfDayHourThreshold, &out.HalfDayWeight,
		&out.OvertimeMultiplier, &out.LatePenaltyPerMinute,
		&out.AbsencePenaltyPerDay, &out.PFPercent, &out.ESIPercent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Override{}, ErrNotFound
	}
	return out, err
}

// Workday satisfies attendance.PolicySource with the company policy's
// workday start in the company timezone. An unknown timezone falls back
// to UTC rather than blocking punches.
func (s *Store) Workday(ctx context.Context, staffID string) (attendance.Workday, error) {
	var value, tz string
	err := s.DB.QueryRow(ctx, `
    SELECT p.workday_start, c.timezone
    FROM staff st
    JOIN pay_policies p ON p.company_id = st.company_id
    JOIN companies c ON c.id = st.company_id
    WHERE st.id = $1
  `, staffID).Scan(&value, &tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Workday{}, ErrNotFound
	}
	if err != nil {
		return attendance.Workday{}, err
	}
	hour, minute, err := attendance.ParseWorkdayStart(value)
	if err != nil {
		return attendance.Workday{}, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return attendance.Workday{Hour: hour, Minute: minute, Location: loc}, nil
}

// EffectiveConfig satisfies payroll.ConfigSource: company policy defaults
// merged with the member's overrides at calculation time.
func (s *Store) EffectiveConfig(ctx context.Context, staffID string) (payroll.CompensationConfig, error) {
	member, err := s.MemberByID(ctx, staffID)
	if err != nil {
		return payroll.CompensationConfig{}, err
	}
	policyStore := company.NewStore(s.DB)
	policy, err := policyStore.PayPolicy(ctx, member.CompanyID)
	if err != nil {
		return payroll.CompensationConfig{}, err
	}
	override, err := s.OverrideFor(ctx, staffID)
	if err != nil {
		return payroll.CompensationConfig{}, err
	}
	return EffectiveConfig(policy, member, override), nil
}
