package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateNotification(ctx context.Context, companyID, staffID, ntype, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (company_id, staff_id, type, title, body)
    VALUES ($1,$2,$3,$4,$5)
  `, companyID, staffID, ntype, title, body)
	return err
}

func (s *Store) StaffEmail(ctx context.Context, staffID string) (string, error) {
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM staff WHERE id = $1", staffID).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) ListNotifications(ctx context.Context, companyID, staffID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, body, read_at, created_at
    FROM notifications
    WHERE company_id = $1 AND staff_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, companyID, staffID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, companyID, staffID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE company_id = $1 AND staff_id = $2 AND read_at IS NULL
  `, companyID, staffID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, companyID, staffID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE company_id = $1 AND staff_id = $2 AND id = $3
  `, companyID, staffID, notificationID)
	return err
}
