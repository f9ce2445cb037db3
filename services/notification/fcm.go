package notification

import (
	"context"
	"fmt"

	providerRepo "marketplace/database/repository/provider"
	userRepo "marketplace/database/repository/user"
	"marketplace/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// MessageSender is the subset of the FCM client used for delivery.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMDelivery resolves a party's device token and sends the push through
// Firebase Cloud Messaging. Parties without a token are skipped.
type FCMDelivery struct {
	Sender    MessageSender
	Users     userRepo.UserRepository
	Providers providerRepo.ProviderRepository
	Logger    *zap.Logger
}

func (d *FCMDelivery) Deliver(ctx context.Context, p models.PushPayload) error {
	token, err := d.tokenFor(ctx, p.TargetRole, p.TargetID)
	if err != nil {
		return err
	}
	if token == "" {
		d.Logger.Debug("no FCM token, push skipped",
			zap.String("role", string(p.TargetRole)), zap.String("target", p.TargetID))
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	response, err := d.Sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("Deliver: failed to send FCM message: %w", err)
	}
	d.Logger.Debug("push delivered", zap.String("messageID", response), zap.String("notificationID", p.NotificationID))
	return nil
}

func (d *FCMDelivery) tokenFor(ctx context.Context, role models.Role, id string) (string, error) {
	switch role {
	case models.RoleClient:
		u, err := d.Users.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("Deliver: could not find user %s: %w", id, err)
		}
		return u.FCMToken, nil
	case models.RoleProvider:
		p, err := d.Providers.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("Deliver: could not find provider %s: %w", id, err)
		}
		return p.FCMToken, nil
	default:
		return "", fmt.Errorf("Deliver: unknown target role %q", role)
	}
}
