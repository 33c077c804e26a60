package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	EmailFrom   string
	EmailOn     bool
	companyFor  func(ctx context.Context, staffID string) (string, error)
}

func New(store StoreAPI, mailer Mailer, emailFrom string, emailOn bool, companyFor func(ctx context.Context, staffID string) (string, error)) *Service {
	return &Service{store: store, Mailer: mailer, EmailFrom: emailFrom, EmailOn: emailOn, companyFor: companyFor}
}

// Notify writes the in-app notification and, when email is enabled, mails
// the staff member. Email failure is logged, never propagated.
func (s *Service) Notify(ctx context.Context, companyID, staffID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, companyID, staffID, ntype, title, body); err != nil {
		return err
	}
	if !s.EmailOn || s.Mailer == nil {
		return nil
	}
	email, err := s.store.StaffEmail(ctx, staffID)
	if err != nil || email == "" {
		if err != nil {
			slog.Warn("notification email lookup failed", "staffId", staffID, "err", err)
		}
		return nil
	}
	if err := s.Mailer.Send(ctx, s.EmailFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "staffId", staffID, "err", err)
	}
	return nil
}

// SalaryPaid satisfies payroll.Notifier.
func (s *Service) SalaryPaid(ctx context.Context, staffID, salaryID, period, amount string) error {
	companyID, err := s.companyFor(ctx, staffID)
	if err != nil {
		return err
	}
	return s.Notify(ctx, companyID, staffID, TypeSalaryPaid,
		"Salary paid", fmt.Sprintf("Your salary for %s has been paid: %s.", period, amount))
}

func (s *Service) List(ctx context.Context, companyID, staffID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, companyID, staffID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, companyID, staffID string) (int, error) {
	return s.store.CountUnread(ctx, companyID, staffID)
}

func (s *Service) MarkRead(ctx context.Context, companyID, staffID, notificationID string) error {
	return s.store.MarkRead(ctx, companyID, staffID, notificationID)
}
