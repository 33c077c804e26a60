package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type User struct {
	ID           string
	CompanyID    string
	StaffID      string
	Email        string
	PasswordHash string
	Role         string
	MFAEnabled   bool
	MFASecretEnc []byte
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.company_id, COALESCE(st.id::text, ''), u.email, u.password_hash, u.role, u.mfa_enabled, u.mfa_secret_enc
    FROM users u
    LEFT JOIN staff st ON st.user_id = u.id
    WHERE u.email = $1 AND u.status = 'active'
  `, email).Scan(&out.ID, &out.CompanyID, &out.StaffID, &out.Email, &out.PasswordHash, &out.Role, &out.MFAEnabled, &out.MFASecretEnc)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.company_id, COALESCE(st.id::text, ''), u.email, u.password_hash, u.role, u.mfa_enabled, u.mfa_secret_enc
    FROM users u
    LEFT JOIN staff st ON st.user_id = u.id
    WHERE u.id = $1 AND u.status = 'active'
  `, userID).Scan(&out.ID, &out.CompanyID, &out.StaffID, &out.Email, &out.PasswordHash, &out.Role, &out.MFAEnabled, &out.MFASecretEnc)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token, expires_at)
    VALUES ($1,$2,$3)
  `, userID, refreshTokenHash, expires)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND refresh_token = $2
  `, userID, refreshTokenHash)
	return err
}

func (s *Store) RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET refresh_token = $3, expires_at = $4
    WHERE user_id = $1 AND refresh_token = $2 AND revoked_at IS NULL
  `, userID, oldHash, newHash, expires)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM sessions
    WHERE user_id = $1 AND refresh_token = $2 AND revoked_at IS NULL AND expires_at > now()
  `, userID, refreshTokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_secret_enc = $2 WHERE id = $1", userID, secretEnc)
	return err
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_enabled = $2 WHERE id = $1", userID, enabled)
	return err
}
