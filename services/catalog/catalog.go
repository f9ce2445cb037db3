// Package catalog manages the services each provider offers for booking.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace/apperror"
	catalogRepo "marketplace/database/repository/catalog"
	providerRepo "marketplace/database/repository/provider"
	"marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLength    = 120
	maxUpdateAttempts = 3
)

type CatalogService interface {
	Create(ctx context.Context, actor models.Actor, in ServiceInput) (*models.ServiceOffering, error)
	Update(ctx context.Context, actor models.Actor, id string, in ServiceInput) (*models.ServiceOffering, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Get(ctx context.Context, id string) (*models.ServiceOffering, error)
	ListForProvider(ctx context.Context, providerID string) ([]models.ServiceOffering, error)
}

// ServiceInput is the provider-editable part of a service.
type ServiceInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price"`
}

func (in *ServiceInput) normalize(op string) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Title == "":
		return apperror.InvalidInput(op, "service title is required")
	case len([]rune(in.Title)) > maxTitleLength:
		return apperror.InvalidInput(op, "service title exceeds %d characters", maxTitleLength)
	case in.Description == "":
		return apperror.InvalidInput(op, "service description is required")
	case in.Category == "":
		return apperror.InvalidInput(op, "service category is required")
	case in.Price < 0:
		return apperror.InvalidInput(op, "price must not be negative")
	}
	return nil
}

type DefaultCatalogService struct {
	Services  catalogRepo.CatalogRepository
	Providers providerRepo.ProviderRepository
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewCatalogService(services catalogRepo.CatalogRepository, providers providerRepo.ProviderRepository, logger *zap.Logger) (*DefaultCatalogService, error) {
	if services == nil || providers == nil {
		return nil, errors.New("catalog service initialization error: repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCatalogService{Services: services, Providers: providers, Logger: logger, Now: time.Now}, nil
}

// Create adds a service to the calling provider's catalog.
func (s *DefaultCatalogService) Create(ctx context.Context, actor models.Actor, in ServiceInput) (*models.ServiceOffering, error) {
	const op = "catalog.Create"
	if actor.Role != models.RoleProvider || actor.ID == "" {
		return nil, apperror.NotAuthorized(op, "only providers can publish services")
	}
	if err := in.normalize(op); err != nil {
		return nil, err
	}
	if _, err := s.Providers.GetByID(ctx, actor.ID); err != nil {
		return nil, err
	}

	now := s.Now()
	svc := &models.ServiceOffering{
		ID:          uuid.New().String(),
		ProviderID:  actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Services.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.Logger.Info("service published", zap.String("serviceID", svc.ID), zap.String("providerID", svc.ProviderID))
	return svc, nil
}

// Update replaces the editable fields of one of the caller's services.
func (s *DefaultCatalogService) Update(ctx context.Context, actor models.Actor, id string, in ServiceInput) (*models.ServiceOffering, error) {
	const op = "catalog.Update"
	if err := in.normalize(op); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		svc, err := s.owned(ctx, op, actor, id)
		if err != nil {
			return nil, err
		}
		svc.Title = in.Title
		svc.Description = in.Description
		svc.Category = in.Category
		svc.Price = in.Price
		svc.UpdatedAt = s.Now()

		err = s.Services.Update(ctx, svc)
		if err == nil {
			s.Logger.Info("service updated", zap.String("serviceID", svc.ID), zap.String("providerID", svc.ProviderID))
			return svc, nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxUpdateAttempts {
			return nil, err
		}
	}
}

// Delete removes one of the caller's services. Existing bookings keep the
// service name they were made with.
func (s *DefaultCatalogService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const op = "catalog.Delete"
	if _, err := s.owned(ctx, op, actor, id); err != nil {
		return err
	}
	if err := s.Services.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("service removed", zap.String("serviceID", id), zap.String("providerID", actor.ID))
	return nil
}

func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.ServiceOffering, error) {
	return s.Services.GetByID(ctx, id)
}

func (s *DefaultCatalogService) ListForProvider(ctx context.Context, providerID string) ([]models.ServiceOffering, error) {
	if _, err := s.Providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.Services.ListByProvider(ctx, providerID)
}

func (s *DefaultCatalogService) owned(ctx context.Context, op string, actor models.Actor, id string) (*models.ServiceOffering, error) {
	svc, err := s.Services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleProvider, svc.ProviderID) {
		return nil, apperror.NotAuthorized(op, "service %s belongs to another provider", id)
	}
	return svc, nil
}
