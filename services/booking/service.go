package booking

import (
	"context"
	"errors"
	"time"

	"marketplace/apperror"
	"marketplace/database"
	bookingRepo "marketplace/database/repository/booking"
	providerRepo "marketplace/database/repository/provider"
	userRepo "marketplace/database/repository/user"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/services/payment"
	"marketplace/services/reliability"
	"marketplace/utils"

	"go.uber.org/zap"
)

const (
	maxTransitionAttempts = 3
	notifyTimeout         = 5 * time.Second
)

// DefaultBookingService implements BookingService. Catalog and
// Subscriptions are optional; without a catalog, bookings that name a
// service are rejected.
type DefaultBookingService struct {
	Bookings      bookingRepo.BookingRepository
	Providers     providerRepo.ProviderRepository
	Users         userRepo.UserRepository
	Slots         SlotResolver
	Reliability   reliability.ReliabilityService
	Notification  Notifier
	Payments      payment.PaymentHandler
	Catalog       ServiceLookup
	Subscriptions SubscriptionChecker
	Tx            database.Transactor
	Policy        Policy
	Logger        *zap.Logger
	Metrics       *utils.Metrics
	Now           func() time.Time
}

// transitionFunc mutates b in place and returns the notices to send once
// the change has committed.
type transitionFunc func(ctx context.Context, b *models.Booking, now time.Time) ([]notification.Notice, error)

// transition loads the booking, applies fn and writes it back inside one
// transaction, so writes fn makes through other repositories commit or
// roll back with the booking. Version conflicts rerun the whole
// transaction.
func (s *DefaultBookingService) transition(ctx context.Context, name, id string, fn transitionFunc) (*models.Booking, error) {
	var (
		result  *models.Booking
		notices []notification.Notice
	)
	for attempt := 1; ; attempt++ {
		err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			b, err := s.Bookings.GetByID(ctx, id)
			if err != nil {
				return err
			}
			now := s.Now()
			n, err := fn(ctx, b, now)
			if err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := b.Validate(); err != nil {
				return err
			}
			if err := s.Bookings.Update(ctx, b); err != nil {
				return err
			}
			result, notices = b, n
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, apperror.ErrConflict) && attempt < maxTransitionAttempts {
			s.Logger.Debug("booking write conflict, retrying",
				zap.String("transition", name), zap.String("bookingID", id), zap.Int("attempt", attempt))
			continue
		}
		return nil, err
	}

	s.Metrics.BookingTransition(name)
	s.Logger.Info("booking transition committed",
		zap.String("transition", name),
		zap.String("bookingID", id),
		zap.String("state", string(result.State())))
	s.dispatch(ctx, id, notices)
	return result, nil
}

// dispatch sends notices after commit. Failures are logged and never
// returned to the caller.
func (s *DefaultBookingService) dispatch(ctx context.Context, bookingID string, notices []notification.Notice) {
	if s.Notification == nil || len(notices) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, n := range notices {
		if err := s.Notification.Notify(ctx, n); err != nil {
			s.Logger.Warn("notification failed",
				zap.String("bookingID", bookingID),
				zap.String("type", string(n.Type)),
				zap.String("target", n.TargetID),
				zap.Error(err))
		}
	}
}

func requireState(op string, b *models.Booking, allowed ...models.BookingState) error {
	state := b.State()
	for _, a := range allowed {
		if state == a {
			return nil
		}
	}
	return apperror.InvalidTransition(op, "booking %s is %s", b.ID, state)
}

func requireProvider(op string, actor models.Actor, b *models.Booking) error {
	if !actor.Is(models.RoleProvider, b.ProviderID) {
		return apperror.NotAuthorized(op, "only the booking's provider can do this")
	}
	return nil
}

func requireClient(op string, actor models.Actor, b *models.Booking) error {
	if !actor.Is(models.RoleClient, b.ClientID) {
		return apperror.NotAuthorized(op, "only the booking's client can do this")
	}
	return nil
}

func toClient(b *models.Booking, t models.NotificationType, msg string, meta map[string]string) notification.Notice {
	return notice(models.RoleClient, b.ClientID, b, t, msg, meta)
}

func toProvider(b *models.Booking, t models.NotificationType, msg string, meta map[string]string) notification.Notice {
	return notice(models.RoleProvider, b.ProviderID, b, t, msg, meta)
}

func notice(role models.Role, target string, b *models.Booking, t models.NotificationType, msg string, meta map[string]string) notification.Notice {
	md := map[string]string{"bookingId": b.ID, "date": b.Date, "time": b.Time}
	for k, v := range meta {
		md[k] = v
	}
	return notification.Notice{TargetRole: role, TargetID: target, Type: t, Message: msg, Metadata: md}
}

func ptr(t time.Time) *time.Time { return &t }

func NewBookingService(
	bookings bookingRepo.BookingRepository,
	providers providerRepo.ProviderRepository,
	users userRepo.UserRepository,
	slots SlotResolver,
	rel reliability.ReliabilityService,
	notifier Notifier,
	payments payment.PaymentHandler,
	tx database.Transactor,
	logger *zap.Logger,
	metrics *utils.Metrics,
) (*DefaultBookingService, error) {
	if bookings == nil || providers == nil || users == nil {
		return nil, errors.New("booking service initialization error: repository is nil")
	}
	if slots == nil || rel == nil || tx == nil {
		return nil, errors.New("booking service initialization error: missing dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Bookings:     bookings,
		Providers:    providers,
		Users:        users,
		Slots:        slots,
		Reliability:  rel,
		Notification: notifier,
		Payments:     payments,
		Tx:           tx,
		Policy:       DefaultPolicy,
		Logger:       logger,
		Metrics:      metrics,
		Now:          time.Now,
	}, nil
}
