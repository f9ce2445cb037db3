// Package subscription sells the monthly client plan and answers whether a
// client currently holds one.
package subscription

import (
	"context"
	"errors"
	"time"

	"marketplace/apperror"
	"marketplace/database"
	subscriptionRepo "marketplace/database/repository/subscription"
	userRepo "marketplace/database/repository/user"
	"marketplace/models"
	"marketplace/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	Get(ctx context.Context, actor models.Actor) (*models.Subscription, error)
	Subscribe(ctx context.Context, actor models.Actor, method models.PaymentMethod) (*models.Subscription, error)
	Cancel(ctx context.Context, actor models.Actor) (*models.Subscription, error)
	HasActive(ctx context.Context, clientID string) (bool, error)
}

// Plan prices one month of subscription.
type Plan struct {
	Fee      float64
	Currency string
}

var DefaultPlan = Plan{Fee: 35, Currency: "ZAR"}

type DefaultSubscriptionService struct {
	Subscriptions subscriptionRepo.SubscriptionRepository
	Users         userRepo.UserRepository
	Payments      payment.PaymentHandler
	Tx            database.Transactor
	Plan          Plan
	Logger        *zap.Logger
	Now           func() time.Time
}

func NewSubscriptionService(
	subs subscriptionRepo.SubscriptionRepository,
	users userRepo.UserRepository,
	payments payment.PaymentHandler,
	tx database.Transactor,
	logger *zap.Logger,
) (*DefaultSubscriptionService, error) {
	if subs == nil || users == nil {
		return nil, errors.New("subscription service initialization error: repository is nil")
	}
	if payments == nil || tx == nil {
		return nil, errors.New("subscription service initialization error: missing dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultSubscriptionService{
		Subscriptions: subs,
		Users:         users,
		Payments:      payments,
		Tx:            tx,
		Plan:          DefaultPlan,
		Logger:        logger,
		Now:           time.Now,
	}, nil
}

// Get returns the caller's subscription. A plan past its end date is
// reported as expired.
func (s *DefaultSubscriptionService) Get(ctx context.Context, actor models.Actor) (*models.Subscription, error) {
	const op = "subscription.Get"
	if actor.Role != models.RoleClient || actor.ID == "" {
		return nil, apperror.NotAuthorized(op, "only clients hold subscriptions")
	}
	sub, err := s.Subscriptions.GetByClient(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	sub.Status = sub.EffectiveStatus(s.Now())
	return sub, nil
}

// Subscribe charges one month and starts or renews the caller's plan. A
// renewal of a plan that has not ended extends it from its end date.
func (s *DefaultSubscriptionService) Subscribe(ctx context.Context, actor models.Actor, method models.PaymentMethod) (*models.Subscription, error) {
	const op = "subscription.Subscribe"
	if actor.Role != models.RoleClient || actor.ID == "" {
		return nil, apperror.NotAuthorized(op, "only clients can subscribe")
	}
	if method != models.PaymentMethodCard {
		return nil, apperror.InvalidInput(op, "subscriptions are paid by card")
	}
	if _, err := s.Users.GetByID(ctx, actor.ID); err != nil {
		return nil, err
	}

	subID := uuid.New().String()
	existing, err := s.Subscriptions.GetByClient(ctx, actor.ID)
	switch {
	case err == nil:
		subID = existing.ID
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	inv, err := s.Payments.ProcessPayment(ctx, models.PaymentRequest{
		SubscriptionID: subID,
		ClientID:       actor.ID,
		Amount:         s.Plan.Fee,
		Currency:       s.Plan.Currency,
		Method:         method,
	})
	if err != nil {
		return nil, err
	}

	var result *models.Subscription
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		now := s.Now()
		sub, err := s.Subscriptions.GetByClient(ctx, actor.ID)
		if errors.Is(err, apperror.ErrNotFound) {
			sub = &models.Subscription{ID: subID, ClientID: actor.ID, StartDate: now, EndDate: now, CreatedAt: now}
			renew(sub, inv, now)
			result = sub
			return s.Subscriptions.Create(ctx, sub)
		}
		if err != nil {
			return err
		}
		if sub.ID != subID {
			return apperror.New(apperror.KindConflict, op, "subscription for client %s was replaced", actor.ID)
		}
		renew(sub, inv, now)
		result = sub
		return s.Subscriptions.Update(ctx, sub)
	})
	if err != nil {
		if voidErr := s.Payments.Void(context.WithoutCancel(ctx), inv); voidErr != nil {
			s.Logger.Error("failed to void subscription payment",
				zap.String("clientID", actor.ID),
				zap.String("invoiceID", inv.InvoiceID),
				zap.String("paymentID", inv.PaymentID),
				zap.NamedError("cause", err),
				zap.Error(voidErr))
		}
		return nil, err
	}

	s.Logger.Info("subscription renewed",
		zap.String("clientID", actor.ID),
		zap.String("subscriptionID", result.ID),
		zap.Time("endDate", result.EndDate))
	return result, nil
}

// renew extends sub by one month from its end date, or from now when it
// has already ended.
func renew(sub *models.Subscription, inv *models.Invoice, now time.Time) {
	from := now
	if sub.EndDate.After(now) {
		from = sub.EndDate
	}
	if !sub.IsActive(now) {
		sub.StartDate = now
	}
	sub.EndDate = from.AddDate(0, 1, 0)
	sub.Status = models.SubscriptionActive
	sub.AutoRenew = true
	sub.PaymentAmount = inv.Amount
	sub.PaymentMethod = inv.Method
	sub.PaymentID = inv.PaymentID
	sub.UpdatedAt = now
}

// Cancel ends the caller's plan immediately and stops renewal.
func (s *DefaultSubscriptionService) Cancel(ctx context.Context, actor models.Actor) (*models.Subscription, error) {
	const op = "subscription.Cancel"
	if actor.Role != models.RoleClient || actor.ID == "" {
		return nil, apperror.NotAuthorized(op, "only clients hold subscriptions")
	}
	sub, err := s.Subscriptions.GetByClient(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if status := sub.EffectiveStatus(now); status != models.SubscriptionActive {
		return nil, apperror.InvalidTransition(op, "subscription is %s", status)
	}
	sub.Status = models.SubscriptionCancelled
	sub.AutoRenew = false
	sub.UpdatedAt = now
	if err := s.Subscriptions.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.Logger.Info("subscription cancelled", zap.String("clientID", actor.ID), zap.String("subscriptionID", sub.ID))
	return sub, nil
}

// HasActive reports whether the client holds a paid-up plan.
func (s *DefaultSubscriptionService) HasActive(ctx context.Context, clientID string) (bool, error) {
	sub, err := s.Subscriptions.GetByClient(ctx, clientID)
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.IsActive(s.Now()), nil
}
