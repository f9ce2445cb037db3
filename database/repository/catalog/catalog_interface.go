package catalogRepo

import (
	"context"

	"marketplace/models"
)

// CatalogRepository stores the services providers offer.
type CatalogRepository interface {
	Create(ctx context.Context, svc *models.ServiceOffering) error
	GetByID(ctx context.Context, id string) (*models.ServiceOffering, error)
	// ListByProvider returns the provider's services, newest first.
	ListByProvider(ctx context.Context, providerID string) ([]models.ServiceOffering, error)
	// Update replaces the service if its version is unchanged since it was
	// read, then advances svc.Version.
	Update(ctx context.Context, svc *models.ServiceOffering) error
	Delete(ctx context.Context, id string) error
}
