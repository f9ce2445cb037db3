package bookingRepo

import (
	"context"

	"marketplace/models"
)

// BookingFilter narrows List results. Zero fields match everything.
type BookingFilter struct {
	ClientID              string
	ProviderID            string
	Date                  string
	Statuses              []models.BookingStatus
	CancellationRequested *bool
}

// Matches reports whether b satisfies the filter.
func (f BookingFilter) Matches(b *models.Booking) bool {
	if f.ClientID != "" && b.ClientID != f.ClientID {
		return false
	}
	if f.ProviderID != "" && b.ProviderID != f.ProviderID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.CancellationRequested != nil && b.CancellationRequested != *f.CancellationRequested {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	}
	return true
}

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, b *models.Booking) error
	// GetByID retrieves a booking by id.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Update replaces the booking if its version is unchanged since it was
	// read, then advances b.Version.
	Update(ctx context.Context, b *models.Booking) error
	// List returns bookings matching the filter, newest first.
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
}
