package booking

import (
	"context"

	"marketplace/apperror"
	bookingRepo "marketplace/database/repository/booking"
	"marketplace/models"
)

// Get returns a booking to one of its parties or an administrator.
func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.HasParty(actor) {
		return nil, apperror.NotAuthorized("booking.Get", "booking %s belongs to other parties", id)
	}
	return b, nil
}

// List scopes clients and providers to their own bookings.
func (s *DefaultBookingService) List(ctx context.Context, actor models.Actor, filter ListFilter) ([]models.Booking, error) {
	f := bookingRepo.BookingFilter{
		ClientID:   filter.ClientID,
		ProviderID: filter.ProviderID,
		Date:       filter.Date,
		Statuses:   filter.Statuses,
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleClient:
		f.ClientID = actor.ID
	case models.RoleProvider:
		f.ProviderID = actor.ID
	default:
		return nil, apperror.NotAuthorized("booking.List", "unknown role %q", actor.Role)
	}
	if actor.Role != models.RoleAdmin && actor.ID == "" {
		return nil, apperror.NotAuthorized("booking.List", "missing actor id")
	}
	return s.Bookings.List(ctx, f)
}

// ListPendingCancellations is the administrator's review queue.
func (s *DefaultBookingService) ListPendingCancellations(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, apperror.NotAuthorized("booking.ListPendingCancellations", "administrator role required")
	}
	pending := true
	return s.Bookings.List(ctx, bookingRepo.BookingFilter{
		Statuses:              []models.BookingStatus{models.StatusConfirmed},
		CancellationRequested: &pending,
	})
}
