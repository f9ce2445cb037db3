package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

// Strike thresholds for provider cancellation requests.
const (
	penaltyAttempt     = 2
	thirdStrikeAttempt = 3
)

// RequestCancellation records a provider's wish to cancel a confirmed
// booking. The first two attempts open a request for the client to answer,
// the second one costing reliability score. The third attempt cancels the
// booking outright and suspends the provider's bookings.
func (s *DefaultBookingService) RequestCancellation(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	const op = "booking.RequestCancellation"
	return s.transition(ctx, "request_cancellation", id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireProvider(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StateConfirmed, models.StateCancellationRequested); err != nil {
			return nil, err
		}

		b.CancellationAttempts++
		b.LastCancellationAttemptDate = ptr(now)
		b.CancellationReason = reasonOrDefault(reason)
		meta := map[string]string{
			"reason":   b.CancellationReason,
			"attempts": strconv.Itoa(b.CancellationAttempts),
		}

		if b.CancellationAttempts >= thirdStrikeAttempt {
			b.Status = models.StatusCancelled
			b.CancellationRequested = false
			b.ThirdStrikeCancellation = true
			b.CancelledBy = models.CancelledByProvider
			b.CancelledAt = ptr(now)

			st, err := s.Reliability.ApplyThirdStrikePenalty(ctx, b.ProviderID)
			if err != nil {
				return nil, err
			}
			s.Logger.Warn("booking auto-cancelled on third cancellation attempt",
				zap.String("bookingID", b.ID),
				zap.String("providerID", b.ProviderID),
				zap.Int("score", st.ReliabilityScore))
			return []notification.Notice{
				toClient(b, models.NotifyBookingCancelledByProvider,
					"The provider cancelled your booking for "+b.Date+" at "+b.Time, meta),
			}, nil
		}

		b.CancellationRequested = true
		b.CancellationRequestedAt = ptr(now)
		if b.CancellationAttempts == penaltyAttempt {
			if _, err := s.Reliability.ApplySecondAttemptPenalty(ctx, b.ProviderID); err != nil {
				return nil, err
			}
		}
		return []notification.Notice{
			toClient(b, models.NotifyCancellationRequested,
				fmt.Sprintf("The provider asked to cancel your booking for %s at %s: %s", b.Date, b.Time, b.CancellationReason), meta),
		}, nil
	})
}

// RespondToCancellation lets the client accept or decline a pending
// provider request. Declining keeps the booking confirmed and the attempt
// count unchanged.
func (s *DefaultBookingService) RespondToCancellation(ctx context.Context, actor models.Actor, id string, accept bool) (*models.Booking, error) {
	const op = "booking.RespondToCancellation"
	name := "decline_cancellation"
	if accept {
		name = "accept_cancellation"
	}
	return s.transition(ctx, name, id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireClient(op, actor, b); err != nil {
			return nil, err
		}
		if err := requireState(op, b, models.StateCancellationRequested); err != nil {
			return nil, err
		}

		b.CancellationRequested = false
		if accept {
			b.Status = models.StatusCancelled
			b.CancelledBy = models.CancelledByProvider
			b.CancelledAt = ptr(now)
			b.CancellationAccepted = true
			b.CancellationAcceptedAt = ptr(now)
			return []notification.Notice{
				toProvider(b, models.NotifyCancellationAcceptedByUser,
					"The client accepted your cancellation for "+b.Date+" at "+b.Time, nil),
			}, nil
		}
		b.CancellationDeclined = true
		b.CancellationDeclinedAt = ptr(now)
		return []notification.Notice{
			toProvider(b, models.NotifyCancellationDeclinedByUser,
				"The client declined your cancellation for "+b.Date+" at "+b.Time, nil),
		}, nil
	})
}

// ResolveCancellation is the administrator's decision on a pending provider
// request. Approval cancels the booking and refunds the booking fee.
func (s *DefaultBookingService) ResolveCancellation(ctx context.Context, actor models.Actor, id string, approve bool) (*models.Booking, error) {
	const op = "booking.ResolveCancellation"
	if !actor.IsAdmin() {
		return nil, apperror.NotAuthorized(op, "administrator role required")
	}
	name := "reject_cancellation"
	if approve {
		name = "approve_cancellation"
	}
	return s.transition(ctx, name, id, func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error) {
		if err := requireState(op, b, models.StateCancellationRequested); err != nil {
			return nil, err
		}

		b.CancellationRequested = false
		if !approve {
			b.CancellationRejected = true
			b.CancellationRejectedAt = ptr(now)
			msg := "The cancellation request for the booking on " + b.Date + " was rejected"
			return []notification.Notice{
				toClient(b, models.NotifyCancellationRejected, msg, nil),
				toProvider(b, models.NotifyCancellationRejected, msg, nil),
			}, nil
		}

		b.Status = models.StatusCancelled
		b.CancelledBy = models.CancelledByAdmin
		b.CancelledAt = ptr(now)
		b.CancellationApproved = true
		b.CancellationApprovedAt = ptr(now)
		b.RefundProcessed = true
		b.RefundAmount = s.Policy.RefundAmount
		b.RefundDate = ptr(now)

		meta := map[string]string{"refundAmount": strconv.FormatFloat(b.RefundAmount, 'f', 2, 64)}
		return []notification.Notice{
			toClient(b, models.NotifyCancellationApproved,
				"Your booking for "+b.Date+" was cancelled and your booking fee refunded", meta),
			toProvider(b, models.NotifyCancellationApproved,
				"Your cancellation request for "+b.Date+" was approved", nil),
		}, nil
	})
}
