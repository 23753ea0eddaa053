package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, n Notification) (string, error)
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	UserEmail(ctx context.Context, userID string) (string, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
