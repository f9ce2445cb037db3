package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "marketplace/database/repository/notification"
	"marketplace/models"
	"marketplace/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notice is a request to inform one party about an event.
type Notice struct {
	TargetRole models.Role
	TargetID   string
	Type       models.NotificationType
	Message    string
	Metadata   map[string]string
}

// NotificationService stores in-app notifications and queues device pushes.
type NotificationService interface {
	Notify(ctx context.Context, n Notice) error
	ListForTarget(ctx context.Context, actor models.Actor, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor models.Actor, id string) error
}

// Pusher hands a push payload to the delivery pipeline.
type Pusher interface {
	Push(ctx context.Context, payload models.PushPayload) error
}

// NoopPusher drops pushes; used when push delivery is disabled.
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, models.PushPayload) error { return nil }

type DefaultNotificationService struct {
	Repo    notificationRepo.NotificationRepository
	Pusher  Pusher
	Logger  *zap.Logger
	Metrics *utils.Metrics
	Now     func() time.Time
}

func NewDefaultNotificationService(repo notificationRepo.NotificationRepository, pusher Pusher, logger *zap.Logger, metrics *utils.Metrics) (*DefaultNotificationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	if pusher == nil {
		pusher = NoopPusher{}
	}
	return &DefaultNotificationService{Repo: repo, Pusher: pusher, Logger: logger, Metrics: metrics, Now: time.Now}, nil
}

// Notify writes the in-app document, then queues the push. The document is
// kept even if queueing fails.
func (s *DefaultNotificationService) Notify(ctx context.Context, n Notice) error {
	doc := &models.Notification{
		ID:         uuid.New().String(),
		TargetRole: n.TargetRole,
		TargetID:   n.TargetID,
		Type:       n.Type,
		Message:    n.Message,
		Metadata:   n.Metadata,
		Read:       false,
		CreatedAt:  s.Now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.Metrics.NotificationFailure("store")
		return fmt.Errorf("Notify: failed to store notification for %s %s: %w", n.TargetRole, n.TargetID, err)
	}

	data := map[string]string{
		"notificationId": doc.ID,
		"type":           string(doc.Type),
		"role":           string(doc.TargetRole),
	}
	for k, v := range n.Metadata {
		data[k] = v
	}
	payload := models.PushPayload{
		NotificationID: doc.ID,
		TargetRole:     doc.TargetRole,
		TargetID:       doc.TargetID,
		Title:          TitleFor(doc.Type),
		Body:           doc.Message,
		Data:           data,
	}
	if err := s.Pusher.Push(ctx, payload); err != nil {
		s.Metrics.NotificationFailure("queue")
		return fmt.Errorf("Notify: failed to queue push %s: %w", doc.ID, err)
	}

	s.Logger.Debug("notification dispatched",
		zap.String("id", doc.ID), zap.String("type", string(doc.Type)), zap.String("target", doc.TargetID))
	return nil
}

func (s *DefaultNotificationService) ListForTarget(ctx context.Context, actor models.Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.Repo.ListForTarget(ctx, actor.Role, actor.ID, unreadOnly)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) error {
	return s.Repo.MarkRead(ctx, id, actor.Role, actor.ID)
}

var titles = map[models.NotificationType]string{
	models.NotifyBookingCreated:             "New booking request",
	models.NotifyBookingAccepted:            "Booking accepted",
	models.NotifyBookingDeclined:            "Booking declined",
	models.NotifyBookingCancelledByUser:     "Booking cancelled",
	models.NotifyCancellationRequested:      "Cancellation requested",
	models.NotifyBookingCancelledByProvider: "Booking cancelled by provider",
	models.NotifyCancellationAcceptedByUser: "Cancellation accepted",
	models.NotifyCancellationDeclinedByUser: "Cancellation declined",
	models.NotifyCancellationApproved:       "Cancellation approved",
	models.NotifyCancellationRejected:       "Cancellation rejected",
	models.NotifyBookingCompleted:           "Booking completed",
	models.NotifyBookingPaid:                "Booking fee paid",
	models.NotifyAccountSuspended:           "Account suspended",
	models.NotifyAccountReinstated:          "Account reinstated",
	models.NotifyProviderVerified:           "Documents verified",
}

// TitleFor returns the push title for a notification type.
func TitleFor(t models.NotificationType) string {
	if title, ok := titles[t]; ok {
		return title
	}
	return "Notification"
}
