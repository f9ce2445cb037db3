package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

const maxUpdateAttempts = 3

// Verify marks a provider's documents as checked, which makes the provider
// bookable.
func (s *DefaultProviderService) Verify(ctx context.Context, actor models.Actor, providerID string) (*models.Provider, error) {
	const op = "provider.Verify"
	if !actor.IsAdmin() {
		return nil, apperror.NotAuthorized(op, "administrator role required")
	}
	p, err := s.updateProvider(ctx, providerID, func(p *models.Provider, now time.Time) {
		p.DocumentsVerified = true
		p.VerifiedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("provider verified", zap.String("providerID", providerID), zap.String("adminID", actor.ID))
	s.notify(ctx, notification.Notice{
		TargetRole: models.RoleProvider,
		TargetID:   providerID,
		Type:       models.NotifyProviderVerified,
		Message:    "Your documents have been verified. You can now receive bookings.",
	})
	return p, nil
}

// Suspend blocks a client or provider account. A nil until blocks it
// indefinitely.
func (s *DefaultProviderService) Suspend(ctx context.Context, actor models.Actor, target models.Actor, reason string, until *time.Time) error {
	const op = "provider.Suspend"
	if !actor.IsAdmin() {
		return apperror.NotAuthorized(op, "administrator role required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.InvalidInput(op, "suspension reason is required")
	}
	if until != nil && !until.After(s.Now()) {
		return apperror.InvalidInput(op, "suspension end must be in the future")
	}

	apply := func(sus *models.Suspension, now time.Time) {
		sus.Suspended = true
		sus.SuspensionReason = reason
		sus.SuspendedAt = &now
		sus.SuspensionEndDate = until
		sus.ReinstatedAt = nil
	}
	if err := s.updateSuspension(ctx, op, target, apply); err != nil {
		return err
	}

	s.Logger.Warn("account suspended",
		zap.String("role", string(target.Role)), zap.String("id", target.ID),
		zap.String("adminID", actor.ID), zap.String("reason", reason))
	s.notify(ctx, notification.Notice{
		TargetRole: target.Role,
		TargetID:   target.ID,
		Type:       models.NotifyAccountSuspended,
		Message:    "Your account has been suspended: " + reason,
		Metadata:   map[string]string{"reason": reason},
	})
	return nil
}

func (s *DefaultProviderService) Reinstate(ctx context.Context, actor models.Actor, target models.Actor) error {
	const op = "provider.Reinstate"
	if !actor.IsAdmin() {
		return apperror.NotAuthorized(op, "administrator role required")
	}
	apply := func(sus *models.Suspension, now time.Time) {
		sus.Suspended = false
		sus.SuspensionReason = ""
		sus.SuspensionEndDate = nil
		sus.ReinstatedAt = &now
	}
	if err := s.updateSuspension(ctx, op, target, apply); err != nil {
		return err
	}

	s.Logger.Info("account reinstated",
		zap.String("role", string(target.Role)), zap.String("id", target.ID), zap.String("adminID", actor.ID))
	s.notify(ctx, notification.Notice{
		TargetRole: target.Role,
		TargetID:   target.ID,
		Type:       models.NotifyAccountReinstated,
		Message:    "Your account has been reinstated.",
	})
	return nil
}

// UpdateFCMToken stores the caller's device token for push delivery.
func (s *DefaultProviderService) UpdateFCMToken(ctx context.Context, actor models.Actor, token string) error {
	const op = "provider.UpdateFCMToken"
	token = strings.TrimSpace(token)
	if token == "" {
		return apperror.InvalidInput(op, "token is required")
	}
	switch actor.Role {
	case models.RoleProvider:
		_, err := s.updateProvider(ctx, actor.ID, func(p *models.Provider, _ time.Time) { p.FCMToken = token })
		return err
	case models.RoleClient:
		_, err := s.updateClient(ctx, actor.ID, func(c *models.Client, _ time.Time) { c.FCMToken = token })
		return err
	}
	return apperror.NotAuthorized(op, "only clients and providers have devices")
}

func (s *DefaultProviderService) updateSuspension(ctx context.Context, op string, target models.Actor, apply func(*models.Suspension, time.Time)) error {
	switch target.Role {
	case models.RoleProvider:
		_, err := s.updateProvider(ctx, target.ID, func(p *models.Provider, now time.Time) { apply(&p.Suspension, now) })
		return err
	case models.RoleClient:
		_, err := s.updateClient(ctx, target.ID, func(c *models.Client, now time.Time) { apply(&c.Suspension, now) })
		return err
	}
	return apperror.InvalidInput(op, "cannot suspend role %q", target.Role)
}

func (s *DefaultProviderService) updateProvider(ctx context.Context, id string, fn func(*models.Provider, time.Time)) (*models.Provider, error) {
	for attempt := 1; ; attempt++ {
		p, err := s.Providers.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		now := s.Now()
		fn(p, now)
		p.UpdatedAt = now
		err = s.Providers.Update(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxUpdateAttempts {
			return nil, err
		}
	}
}

func (s *DefaultProviderService) updateClient(ctx context.Context, id string, fn func(*models.Client, time.Time)) (*models.Client, error) {
	for attempt := 1; ; attempt++ {
		c, err := s.Users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		now := s.Now()
		fn(c, now)
		c.UpdatedAt = now
		err = s.Users.Update(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxUpdateAttempts {
			return nil, err
		}
	}
}

func (s *DefaultProviderService) notify(ctx context.Context, n notification.Notice) {
	if s.Notification == nil {
		return
	}
	if err := s.Notification.Notify(context.WithoutCancel(ctx), n); err != nil {
		s.Logger.Warn("notification failed",
			zap.String("type", string(n.Type)), zap.String("target", n.TargetID), zap.Error(err))
	}
}
