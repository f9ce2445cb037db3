package subscriptionRepo

import (
	"context"

	"marketplace/models"
)

// SubscriptionRepository stores one subscription per client.
type SubscriptionRepository interface {
	// Create fails with AlreadyExists when the client already has one.
	Create(ctx context.Context, sub *models.Subscription) error
	GetByClient(ctx context.Context, clientID string) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
}
