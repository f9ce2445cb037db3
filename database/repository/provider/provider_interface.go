package providerRepo

import (
	"context"

	"marketplace/models"
)

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// Create inserts a new provider record.
	Create(ctx context.Context, p *models.Provider) error
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// GetByEmail retrieves a provider by its email address.
	GetByEmail(ctx context.Context, email string) (*models.Provider, error)
	// GetAll retrieves all providers.
	GetAll(ctx context.Context) ([]models.Provider, error)
	// Update replaces the provider if its version is unchanged since it
	// was read, then advances p.Version.
	Update(ctx context.Context, p *models.Provider) error
}
