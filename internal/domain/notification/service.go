package notification

import "context"

// Service is the notification log surface.
type Service interface {
	Notify(ctx context.Context, recipientID string, notifType NotificationType, title, message string, data map[string]interface{}) error
	NotifyBatch(ctx context.Context, recipientIDs []string, notifType NotificationType, title, message string, data map[string]interface{}) error
	List(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID string, ids []string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
