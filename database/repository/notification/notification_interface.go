package notificationRepo

import (
	"context"

	"marketplace/models"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListForTarget returns a party's notifications, newest first.
	ListForTarget(ctx context.Context, role models.Role, targetID string, unreadOnly bool) ([]models.Notification, error)
	// MarkRead flags one notification owned by the target as read.
	MarkRead(ctx context.Context, id string, role models.Role, targetID string) error
}
