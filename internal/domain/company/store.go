package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Company(ctx context.Context, companyID string) (Company, error) {
	var out Company
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, timezone, created_at
    FROM companies
    WHERE id = $1
  `, companyID).Scan(&out.ID, &out.Name, &out.Timezone, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return out, err
}

func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, timezone, created_at
    FROM companies
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Timezone, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCompany(ctx context.Context, name, timezone string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO companies (name, timezone)
    VALUES ($1, $2)
    RETURNING id
  `, name, timezone).Scan(&id)
	return id, err
}

func (s *Store) PayPolicy(ctx context.Context, companyID string) (PayPolicy, error) {
	var out PayPolicy
	err := s.DB.QueryRow(ctx, `
    SELECT company_id, contracted_days, standard_hours_per_day, workday_start,
           half_day_hour_threshold, half_day_weight, overtime_multiplier,
           late_penalty_per_minute, absence_penalty_per_day,
           pf_percent, esi_percent, esi_wage_ceiling, updated_at
    FROM pay_policies
    WHERE company_id = $1
  `, companyID).Scan(
		&out.CompanyID, &out.ContractedDays, &out.StandardHoursPerDay, &out.WorkdayStart,
		&out.HalfDayHourThreshold, &out.HalfDayWeight, &out.OvertimeMultiplier,
		&out.LatePenaltyPerMinute, &out.AbsencePenaltyPerDay,
		&out.PFPercent, &out.ESIPercent, &out.ESIWageCeiling, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayPolicy{}, ErrNotFound
	}
	return out, err
}

func (s *Store) UpsertPayPolicy(ctx context.Context, policy PayPolicy) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_policies (
      company_id, contracted_days, standard_hours_per_day, workday_start,
      half_day_hour_threshold, half_day_weight, overtime_multiplier,
      late_penalty_per_minute, absence_penalty_per_day,
      pf_percent, esi_percent, esi_wage_ceiling
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    ON CONFLICT (company_id) DO UPDATE SET
      contracted_days = EXCLUDED.contracted_days,
      standard_hours_per_day = EXCLUDED.standard_hours_per_day,
      workday_start = EXCLUDED.workday_start,
      half_day_hour_threshold = EXCLUDED.half_day_hour_threshold,
      half_day_weight = EXCLUDED.half_day_weight,
      overtime_multiplier = EXCLUDED.overtime_multiplier,
      late_penalty_per_minute = EXCLUDED.late_penalty_per_minute,
      absence_penalty_per_day = EXCLUDED.absence_penalty_per_day,
      pf_percent = EXCLUDED.pf_percent,
      esi_percent = EXCLUDED.esi_percent,
      esi_wage_ceiling = EXCLUDED.esi_wage_ceiling,
      updated_at = now()
  `, policy.CompanyID, policy.ContractedDays, policy.StandardHoursPerDay, policy.WorkdayStart,
		policy.HalfDayHourThreshold, policy.HalfDayWeight, policy.OvertimeMultiplier,
		policy.LatePenaltyPerMinute, policy.AbsencePenaltyPerDay,
		policy.PFPercent, policy.ESIPercent, policy.ESIWageCeiling)
	return err
}
