package reviewRepo

import (
	"context"

	"marketplace/models"
)

// ReviewRepository stores client reviews. At most one review exists per
// booking.
type ReviewRepository interface {
	// Create inserts a review, failing with AlreadyExists when the booking
	// was already reviewed.
	Create(ctx context.Context, r *models.Review) error
	ListByProvider(ctx context.Context, providerID string) ([]models.Review, error)
}
