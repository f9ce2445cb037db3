package booking

import (
	"context"
	"strings"
	"time"

	"marketplace/models"
	"marketplace/services/notification"
)

const defaultReason = "No reason provided"

func reasonOrDefault(reason string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return defaultReason
}

// Accept confirms a pending booking.
func (s *DefaultBookingService) Accept(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	const op = "booking.Accept"
	return s.transition(ctx, "accept", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireProvider(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StatePendingConfirmation); err != nil {
			return nil, err
		}
		b.Status = models.StatusConfirmed
		return []notification.Notice{
			toClient(b, models.NotifyBookingAccepted, "Your booking for "+b.Date+" at "+b.Time+" was accepted", nil),
		}, nil
	})
}

func (s *DefaultBookingService) Decline(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	const op = "booking.Decline"
	return s.transition(ctx, "decline", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireProvider(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StatePendingConfirmation); err != nil {
			return nil, err
		}
		b.Status = models.StatusDeclined
		b.DeclineReason = reasonOrDefault(reason)
		return []notification.Notice{
			toClient(b, models.NotifyBookingDeclined, "Your booking for "+b.Date+" was declined: "+b.DeclineReason,
				map[string]string{"reason": b.DeclineReason}),
		}, nil
	})
}

// CancelByClient ends a booking the provider has not asked to cancel. It
// applies no reliability penalty.
func (s *DefaultBookingService) CancelByClient(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	const op = "booking.CancelByClient"
	return s.transition(ctx, "cancel_by_client", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireClient(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StatePendingConfirmation, models.StateConfirmed); err != nil {
			return nil, err
		}
		b.Status = models.StatusCancelled
		b.CancelledBy = models.CancelledByClient
		b.CancelledAt = ptr(now)
		b.CancellationReason = reasonOrDefault(reason)
		return []notification.Notice{
			toProvider(b, models.NotifyBookingCancelledByUser, "The client cancelled the booking for "+b.Date+" at "+b.Time,
				map[string]string{"reason": b.CancellationReason}),
		}, nil
	})
}

// Complete marks the engagement done and credits the provider's score.
func (s *DefaultBookingService) Complete(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	const op = "booking.Complete"
	return s.transition(ctx, "complete", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireProvider(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StateConfirmed); err != nil {
			return nil, err
		}
		b.Status = models.StatusCompleted
		b.CompletedAt = ptr(now)
		if _, err := s.Reliability.IncreaseScoreOnCompletion(ctx, b.ProviderID); err != nil {
			return nil, err
		}
		return []notification.Notice{
			toClient(b, models.NotifyBookingCompleted, "Your booking for "+b.Date+" has been completed", nil),
		}, nil
	})
}
