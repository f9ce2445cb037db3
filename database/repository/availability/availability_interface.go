package availabilityRepo

import (
	"context"

	"marketplace/models"
)

// AvailabilityRepository stores one availability record per provider.
type AvailabilityRepository interface {
	// Get returns the provider's record or a NotFound error.
	Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error)
	// Save creates or replaces the provider's record.
	Save(ctx context.Context, rec *models.AvailabilityRecord) error
}
