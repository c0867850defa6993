package notification

import (
	"context"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/notification"
)

type NotificationServiceImpl struct {
	repo notification.Repository
}

func NewNotificationService(repo notification.Repository) notification.Service {
	return &NotificationServiceImpl{repo: repo}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, recipientID string, notifType notification.NotificationType, title, message string, data map[string]interface{}) error {
	n := &notification.Notification{
		RecipientID: recipientID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	return s.repo.Create(ctx, n)
}

func (s *NotificationServiceImpl) NotifyBatch(ctx context.Context, recipientIDs []string, notifType notification.NotificationType, title, message string, data map[string]interface{}) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	now := time.Now()
	notifications := make([]*notification.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		notifications = append(notifications, &notification.Notification{
			RecipientID: recipientID,
			Type:        notifType,
			Title:       title,
			Message:     message,
			Data:        data,
			CreatedAt:   now,
		})
	}
	return s.repo.CreateBatch(ctx, notifications)
}

func (s *NotificationServiceImpl) List(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.GetByRecipient(ctx, recipientID, page, pageSize, unreadOnly)
}

func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.MarkAsRead(ctx, ids, recipientID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}
