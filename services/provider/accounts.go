package provider

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"marketplace/apperror"
	"marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func normalizeEmail(op, email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", apperror.InvalidInput(op, "invalid email address %q", email)
	}
	return strings.ToLower(addr.Address), nil
}

// Register creates an unverified provider together with its reliability
// record and default weekly availability.
func (s *DefaultProviderService) Register(ctx context.Context, in RegisterInput) (*models.Provider, error) {
	const op = "provider.Register"
	email, err := normalizeEmail(op, in.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.ServiceType) == "" {
		return nil, apperror.InvalidInput(op, "fullName and serviceType are required")
	}

	now := s.Now()
	p := &models.Provider{
		ID:                uuid.New().String(),
		FullName:          strings.TrimSpace(in.FullName),
		Email:             email,
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		ServiceType:       strings.TrimSpace(in.ServiceType),
		ReliabilityRecord: models.NewReliabilityRecord(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Providers.GetByEmail(ctx, email); err == nil {
			return apperror.New(apperror.KindAlreadyExists, op, "provider with email %s exists", email)
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		if err := s.Providers.Create(ctx, p); err != nil {
			return err
		}
		return s.Availability.Save(ctx, models.DefaultAvailability(p.ID, now))
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("provider registered", zap.String("providerID", p.ID), zap.String("serviceType", p.ServiceType))
	return p, nil
}

func (s *DefaultProviderService) RegisterClient(ctx context.Context, in RegisterClientInput) (*models.Client, error) {
	const op = "provider.RegisterClient"
	email, err := normalizeEmail(op, in.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, apperror.InvalidInput(op, "fullName is required")
	}

	now := s.Now()
	c := &models.Client{
		ID:        uuid.New().String(),
		FullName:  strings.TrimSpace(in.FullName),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.KindAlreadyExists, op, "client with email %s exists", email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if err := s.Users.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("client registered", zap.String("clientID", c.ID))
	return c, nil
}

// GetProvider returns the provider with its effective reliability record.
func (s *DefaultProviderService) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	p, err := s.Providers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withEffectiveReliability(ctx, p)
}

func (s *DefaultProviderService) ListProviders(ctx context.Context) ([]models.Provider, error) {
	list, err := s.Providers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		p, err := s.withEffectiveReliability(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		list[i] = *p
	}
	return list, nil
}

// withEffectiveReliability applies defaults and lazy penalty expiry to the
// stored record, writing it back when the stored form is behind.
func (s *DefaultProviderService) withEffectiveReliability(ctx context.Context, p *models.Provider) (*models.Provider, error) {
	if !p.ReliabilityRecord.Effective(s.Now()).NeedsWrite {
		return p, nil
	}
	updated, err := s.updateProvider(ctx, p.ID, func(p *models.Provider, now time.Time) {
		p.ReliabilityRecord = p.ReliabilityRecord.Effective(now).Record()
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("provider reliability record refreshed on read",
		zap.String("providerID", p.ID), zap.Boolp("bookingEnabled", updated.BookingEnabled))
	return updated, nil
}
