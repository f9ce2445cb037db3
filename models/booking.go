package models

import (
	"time"

	"marketplace/apperror"
)

// BookingStatus is the persisted status field of a booking.
type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "pending_confirmation"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCompleted           BookingStatus = "completed"
	StatusCancelled           BookingStatus = "cancelled"
	StatusDeclined            BookingStatus = "declined"
)

// BookingState is the single lifecycle state derived from status and the
// pending cancellation flag.
type BookingState string

const (
	StatePendingConfirmation   BookingState = "pending_confirmation"
	StateConfirmed             BookingState = "confirmed"
	StateCancellationRequested BookingState = "cancellation_requested"
	StateCompleted             BookingState = "completed"
	StateCancelled             BookingState = "cancelled"
	StateDeclined              BookingState = "declined"
)

var validTransitions = map[BookingState][]BookingState{
	StatePendingConfirmation: {StateConfirmed, StateDeclined, StateCancelled},
	StateConfirmed:           {StateCompleted, StateCancelled, StateCancellationRequested},
	// a repeated provider request stays in the pending sub-state
	StateCancellationRequested: {StateCancellationRequested, StateConfirmed, StateCancelled},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s BookingState) CanTransitionTo(next BookingState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateDeclined
}

// CancelledBy records which party ended a booking.
type CancelledBy string

const (
	CancelledByClient   CancelledBy = "client"
	CancelledByProvider CancelledBy = "provider"
	CancelledByAdmin    CancelledBy = "admin"
)

type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentVoided    PaymentStatus = "voided"
)

// Booking is one service engagement between a client and a provider.
type Booking struct {
	ID          string        `bson:"id" json:"id"`
	ClientID    string        `bson:"clientId" json:"clientId"`
	ProviderID  string        `bson:"providerId" json:"providerId"`
	ServiceID   string        `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	ServiceName string        `bson:"serviceName,omitempty" json:"serviceName,omitempty"`
	Date        string        `bson:"date" json:"date"`
	Time        string        `bson:"time" json:"time"`
	Location    string        `bson:"location" json:"location"`
	Description string        `bson:"description" json:"description"`
	Status      BookingStatus `bson:"status" json:"status"`

	// Cancellation request protocol.
	CancellationRequested       bool        `bson:"cancellationRequested" json:"cancellationRequested"`
	CancellationAttempts        int         `bson:"cancellationAttempts" json:"cancellationAttempts"`
	CancellationReason          string      `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancellationRequestedAt     *time.Time  `bson:"cancellationRequestedAt,omitempty" json:"cancellationRequestedAt,omitempty"`
	LastCancellationAttemptDate *time.Time  `bson:"lastCancellationAttemptDate,omitempty" json:"lastCancellationAttemptDate,omitempty"`
	CancelledBy                 CancelledBy `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt                 *time.Time  `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	ThirdStrikeCancellation     bool        `bson:"thirdStrikeCancellation" json:"thirdStrikeCancellation"`
	CancellationAccepted        bool        `bson:"cancellationAccepted" json:"cancellationAccepted"`
	CancellationAcceptedAt      *time.Time  `bson:"cancellationAcceptedDate,omitempty" json:"cancellationAcceptedDate,omitempty"`
	CancellationDeclined        bool        `bson:"cancellationDeclined" json:"cancellationDeclined"`
	CancellationDeclinedAt      *time.Time  `bson:"cancellationDeclinedDate,omitempty" json:"cancellationDeclinedDate,omitempty"`
	CancellationApproved        bool        `bson:"cancellationApproved" json:"cancellationApproved"`
	CancellationApprovedAt      *time.Time  `bson:"cancellationApprovedAt,omitempty" json:"cancellationApprovedAt,omitempty"`
	CancellationRejected        bool        `bson:"cancellationRejected" json:"cancellationRejected"`
	CancellationRejectedAt      *time.Time  `bson:"cancellationRejectedAt,omitempty" json:"cancellationRejectedAt,omitempty"`
	DeclineReason               string      `bson:"declineReason,omitempty" json:"declineReason,omitempty"`

	// Refund and booking fee.
	RefundProcessed bool          `bson:"refundProcessed" json:"refundProcessed"`
	RefundAmount    float64       `bson:"refundAmount" json:"refundAmount"`
	RefundDate      *time.Time    `bson:"refundDate,omitempty" json:"refundDate,omitempty"`
	BookingFee      float64       `bson:"bookingFee" json:"bookingFee"`
	PaymentStatus   PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID       string        `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaidAt          *time.Time    `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	Version int64 `bson:"version" json:"version"`
}

// State collapses status and the pending request flag into one value.
func (b *Booking) State() BookingState {
	if b.Status == StatusConfirmed && b.CancellationRequested {
		return StateCancellationRequested
	}
	return BookingState(b.Status)
}

// Validate rejects status and flag combinations that do not name exactly
// one lifecycle state.
func (b *Booking) Validate() error {
	switch b.Status {
	case StatusPendingConfirmation, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined:
	default:
		return apperror.InvalidTransition("Booking.Validate", "unknown status %q", b.Status)
	}
	if b.CancellationRequested && b.Status != StatusConfirmed {
		return apperror.InvalidTransition("Booking.Validate", "cancellation request on %s booking", b.Status)
	}
	if b.CancellationAttempts < 0 {
		return apperror.InvalidTransition("Booking.Validate", "negative cancellation attempts")
	}
	if b.Status == StatusCancelled && b.CancelledBy == "" {
		return apperror.InvalidTransition("Booking.Validate", "cancelled booking without cancelling party")
	}
	return nil
}

// HasParty reports whether the actor is the booking's client or provider.
func (b *Booking) HasParty(a Actor) bool {
	return a.Is(RoleClient, b.ClientID) || a.Is(RoleProvider, b.ProviderID)
}
