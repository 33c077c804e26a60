package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"staffpay/internal/platform/config"
)

// Seed creates the default company, its pay policy, and the admin user on
// first boot. Idempotent: an existing company short-circuits the seed.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM companies").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		slog.Info("seed skipped: SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD not set")
		return nil
	}

	var companyID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO companies (name) VALUES ($1) RETURNING id
  `, cfg.SeedCompanyName).Scan(&companyID); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
    INSERT INTO pay_policies (company_id) VALUES ($1)
  `, companyID); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO users (company_id, email, password_hash, role)
    VALUES ($1, $2, $3, 'admin')
  `, companyID, cfg.SeedAdminEmail, string(hash)); err != nil {
		return err
	}

	slog.Info("seeded default company and admin", "company", cfg.SeedCompanyName, "admin", cfg.SeedAdminEmail)
	return nil
}
