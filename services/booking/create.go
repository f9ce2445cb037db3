package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace/apperror"
	bookingRepo "marketplace/database/repository/booking"
	"marketplace/models"
	"marketplace/services/availability"
	"marketplace/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// activeStatuses hold their slot.
var activeStatuses = []models.BookingStatus{models.StatusPendingConfirmation, models.StatusConfirmed}

// Create books one of the provider's open slots for the calling client.
func (s *DefaultBookingService) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Booking, error) {
	const op = "booking.Create"
	if actor.Role != models.RoleClient || actor.ID == "" {
		return nil, apperror.NotAuthorized(op, "only clients can create bookings")
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return nil, apperror.InvalidInput(op, "providerId is required")
	}
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	day, err := time.Parse(availability.DateLayout, in.Date)
	if err != nil {
		return nil, apperror.InvalidInput(op, "invalid date %q, want YYYY-MM-DD", in.Date)
	}
	minutes, err := availability.ParseClock(in.Time)
	if err != nil {
		return nil, apperror.InvalidInput(op, "invalid time %q, want HH:MM", in.Time)
	}
	slot := availability.FormatClock(minutes)
	if err := s.checkSubscription(ctx, op, actor.ID); err != nil {
		return nil, err
	}

	var created *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		now := s.Now()

		client, err := s.Users.GetByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		if client.IsSuspended(now) {
			return apperror.NotAuthorized(op, "client account is suspended")
		}
		if err := s.checkProvider(ctx, op, in.ProviderID, now); err != nil {
			return err
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, now.Location())
		if !start.After(now) {
			return apperror.New(apperror.KindSlotUnavailable, op, "slot %s %s is in the past", in.Date, slot)
		}
		if err := s.checkSlot(ctx, op, in.ProviderID, in.Date, slot); err != nil {
			return err
		}
		serviceName, err := s.serviceName(ctx, op, in.ProviderID, in.ServiceID)
		if err != nil {
			return err
		}

		b := &models.Booking{
			ID:            uuid.New().String(),
			ClientID:      actor.ID,
			ProviderID:    in.ProviderID,
			ServiceID:     in.ServiceID,
			ServiceName:   serviceName,
			Date:          in.Date,
			Time:          slot,
			Location:      in.Location,
			Description:   in.Description,
			Status:        models.StatusPendingConfirmation,
			PaymentStatus: models.PaymentUnpaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.Bookings.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.BookingTransition("create")
	s.Logger.Info("booking created",
		zap.String("bookingID", created.ID),
		zap.String("clientID", created.ClientID),
		zap.String("providerID", created.ProviderID),
		zap.String("date", created.Date),
		zap.String("time", created.Time))
	s.dispatch(ctx, created.ID, []notification.Notice{
		toProvider(created, models.NotifyBookingCreated,
			"You have a new booking request for "+created.Date+" at "+created.Time, nil),
	})
	return created, nil
}

// checkProvider fails unless the provider may take new bookings.
func (s *DefaultBookingService) checkProvider(ctx context.Context, op, providerID string, now time.Time) error {
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return err
	}
	if !p.DocumentsVerified {
		return apperror.New(apperror.KindProviderUnavailable, op, "provider %s is not verified", providerID)
	}
	if p.IsSuspended(now) {
		return apperror.New(apperror.KindProviderUnavailable, op, "provider %s is suspended", providerID)
	}
	penalized, err := s.Reliability.IsInPenaltyPeriod(ctx, providerID)
	if err != nil {
		return err
	}
	if penalized {
		return apperror.New(apperror.KindProviderUnavailable, op, "provider %s is not accepting bookings", providerID)
	}
	return nil
}

// checkSubscription enforces the subscription gate when the policy has one.
func (s *DefaultBookingService) checkSubscription(ctx context.Context, op, clientID string) error {
	if !s.Policy.RequireSubscription {
		return nil
	}
	if s.Subscriptions == nil {
		return apperror.New(apperror.KindInternal, op, "subscriptions are not configured")
	}
	active, err := s.Subscriptions.HasActive(ctx, clientID)
	if err != nil {
		return err
	}
	if !active {
		return apperror.NotAuthorized(op, "an active subscription is required")
	}
	return nil
}

// serviceName resolves the booked service, which must belong to the
// provider. An empty serviceID books the provider without one.
func (s *DefaultBookingService) serviceName(ctx context.Context, op, providerID, serviceID string) (string, error) {
	if serviceID == "" {
		return "", nil
	}
	if s.Catalog == nil {
		return "", apperror.InvalidInput(op, "service %s is not offered", serviceID)
	}
	svc, err := s.Catalog.Get(ctx, serviceID)
	if errors.Is(err, apperror.ErrNotFound) {
		return "", apperror.InvalidInput(op, "service %s is not offered", serviceID)
	}
	if err != nil {
		return "", err
	}
	if svc.ProviderID != providerID {
		return "", apperror.InvalidInput(op, "service %s is not offered by provider %s", serviceID, providerID)
	}
	return svc.Title, nil
}

// checkSlot fails unless slot is offered on date and no active booking
// already holds it.
func (s *DefaultBookingService) checkSlot(ctx context.Context, op, providerID, date, slot string) error {
	slots, err := s.Slots.SlotsFor(ctx, providerID, date)
	if err != nil {
		return err
	}
	offered := false
	for _, t := range slots {
		if t == slot {
			offered = true
			break
		}
	}
	if !offered {
		return apperror.New(apperror.KindSlotUnavailable, op, "provider does not offer %s on %s", slot, date)
	}

	held, err := s.Bookings.List(ctx, bookingRepo.BookingFilter{
		ProviderID: providerID,
		Date:       date,
		Statuses:   activeStatuses,
	})
	if err != nil {
		return err
	}
	for _, b := range held {
		if b.Time == slot {
			return apperror.New(apperror.KindSlotUnavailable, op, "slot %s on %s is already booked", slot, date)
		}
	}
	return nil
}
