package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, companyID, staffID, ntype, title, body string) error
	StaffEmail(ctx context.Context, staffID string) (string, error)
	ListNotifications(ctx context.Context, companyID, staffID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, companyID, staffID string) (int, error)
	MarkRead(ctx context.Context, companyID, staffID, notificationID string) error
}
