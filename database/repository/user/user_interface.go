package userRepo

import (
	"context"

	"marketplace/models"
)

// UserRepository defines methods for client account data access.
type UserRepository interface {
	Create(ctx context.Context, c *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	// Update replaces the client if its version is unchanged since it was
	// read, then advances c.Version.
	Update(ctx context.Context, c *models.Client) error
}
