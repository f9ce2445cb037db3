package provider

import (
	"context"
	"errors"
	"time"

	"marketplace/database"
	availabilityRepo "marketplace/database/repository/availability"
	providerRepo "marketplace/database/repository/provider"
	userRepo "marketplace/database/repository/user"
	"marketplace/models"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

// ProviderService manages provider and client accounts.
type ProviderService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Provider, error)
	RegisterClient(ctx context.Context, in RegisterClientInput) (*models.Client, error)
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	ListProviders(ctx context.Context) ([]models.Provider, error)
	Verify(ctx context.Context, actor models.Actor, providerID string) (*models.Provider, error)
	Suspend(ctx context.Context, actor models.Actor, target models.Actor, reason string, until *time.Time) error
	Reinstate(ctx context.Context, actor models.Actor, target models.Actor) error
	UpdateFCMToken(ctx context.Context, actor models.Actor, token string) error
}

type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	ServiceType string `json:"serviceType" binding:"required"`
}

type RegisterClientInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type Notifier interface {
	Notify(ctx context.Context, n notification.Notice) error
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Providers    providerRepo.ProviderRepository
	Users        userRepo.UserRepository
	Availability availabilityRepo.AvailabilityRepository
	Notification Notifier
	Tx           database.Transactor
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDefaultProviderService(
	providers providerRepo.ProviderRepository,
	users userRepo.UserRepository,
	availability availabilityRepo.AvailabilityRepository,
	notifier Notifier,
	tx database.Transactor,
	logger *zap.Logger,
) (*DefaultProviderService, error) {
	if providers == nil || users == nil || availability == nil || tx == nil {
		return nil, errors.New("provider service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultProviderService{
		Providers:    providers,
		Users:        users,
		Availability: availability,
		Notification: notifier,
		Tx:           tx,
		Logger:       logger,
		Now:          time.Now,
	}, nil
}
