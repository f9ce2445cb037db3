package models

import "time"

type NotificationType string

const (
	NotifyBookingCreated             NotificationType = "booking_created"
	NotifyBookingAccepted            NotificationType = "booking_accepted"
	NotifyBookingDeclined            NotificationType = "booking_declined"
	NotifyBookingCancelledByUser     NotificationType = "booking_cancelled_by_user"
	NotifyCancellationRequested      NotificationType = "booking_cancellation_requested"
	NotifyBookingCancelledByProvider NotificationType = "booking_cancelled_by_provider"
	NotifyCancellationAcceptedByUser NotificationType = "cancellation_accepted_by_user"
	NotifyCancellationDeclinedByUser NotificationType = "cancellation_declined_by_user"
	NotifyCancellationApproved       NotificationType = "cancellation_approved"
	NotifyCancellationRejected       NotificationType = "cancellation_rejected"
	NotifyBookingCompleted           NotificationType = "booking_completed"
	NotifyBookingPaid                NotificationType = "booking_paid"
	NotifyAccountSuspended           NotificationType = "account_suspended"
	NotifyAccountReinstated          NotificationType = "account_reinstated"
	NotifyProviderVerified           NotificationType = "provider_verified"
)

// Notification is an in-app message stored for one party.
type Notification struct {
	ID         string            `bson:"id" json:"id"`
	TargetRole Role              `bson:"targetRole" json:"targetRole"`
	TargetID   string            `bson:"targetId" json:"targetId"`
	Type       NotificationType  `bson:"type" json:"type"`
	Message    string            `bson:"message" json:"message"`
	Metadata   map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read       bool              `bson:"read" json:"read"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
}

// PushPayload is the queued job that delivers a notification to a device.
type PushPayload struct {
	NotificationID string            `json:"notificationId"`
	TargetRole     Role              `json:"targetRole"`
	TargetID       string            `json:"targetId"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data"`
}
