package booking

import (
	"context"

	"marketplace/models"
	"marketplace/services/notification"
)

// BookingService drives a booking through its lifecycle. Every operation
// takes the acting party explicitly.
type BookingService interface {
	Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	List(ctx context.Context, actor models.Actor, filter ListFilter) ([]models.Booking, error)
	ListPendingCancellations(ctx context.Context, actor models.Actor) ([]models.Booking, error)

	Accept(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Decline(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)
	CancelByClient(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)
	Complete(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)

	RequestCancellation(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error)
	RespondToCancellation(ctx context.Context, actor models.Actor, id string, accept bool) (*models.Booking, error)
	ResolveCancellation(ctx context.Context, actor models.Actor, id string, approve bool) (*models.Booking, error)

	PayBookingFee(ctx context.Context, actor models.Actor, id string, method models.PaymentMethod) (*models.Booking, error)
}

// SlotResolver lists a provider's bookable times on an ISO date.
type SlotResolver interface {
	SlotsFor(ctx context.Context, providerID, date string) ([]string, error)
}

// ServiceLookup resolves a booked service from the provider catalog.
type ServiceLookup interface {
	Get(ctx context.Context, id string) (*models.ServiceOffering, error)
}

// SubscriptionChecker reports whether a client holds an active plan.
type SubscriptionChecker interface {
	HasActive(ctx context.Context, clientID string) (bool, error)
}

// Notifier informs a party about a committed transition.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notice) error
}

// CreateInput is what a client submits to book a provider.
type CreateInput struct {
	ProviderID  string `json:"providerId" binding:"required"`
	ServiceID   string `json:"serviceId"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ListFilter narrows List. Admins may set ClientID and ProviderID; other
// roles are always scoped to their own bookings.
type ListFilter struct {
	ClientID   string
	ProviderID string
	Date       string
	Statuses   []models.BookingStatus
}

// Policy holds the fee amounts applied by the lifecycle. With
// RequireSubscription set, only subscribed clients can create bookings.
type Policy struct {
	BookingFee          float64
	RefundAmount        float64
	Currency            string
	RequireSubscription bool
}

// DefaultPolicy is the R35 fee refunded in full on approved cancellations.
var DefaultPolicy = Policy{BookingFee: 35, RefundAmount: 35, Currency: "ZAR"}
