// Package review records client ratings of completed bookings and keeps
// the provider's running average current.
package review

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"marketplace/apperror"
	"marketplace/database"
	bookingRepo "marketplace/database/repository/booking"
	providerRepo "marketplace/database/repository/provider"
	reviewRepo "marketplace/database/repository/review"
	"marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinRating = 1
	MaxRating = 5

	maxCommentLength  = 2000
	maxUpdateAttempts = 3
)

type ReviewService interface {
	Submit(ctx context.Context, actor models.Actor, bookingID string, rating int, comment string) (*models.Review, error)
	ListForProvider(ctx context.Context, providerID string) ([]models.Review, error)
}

type DefaultReviewService struct {
	Reviews   reviewRepo.ReviewRepository
	Bookings  bookingRepo.BookingRepository
	Providers providerRepo.ProviderRepository
	Tx        database.Transactor
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewReviewService(reviews reviewRepo.ReviewRepository, bookings bookingRepo.BookingRepository, providers providerRepo.ProviderRepository, tx database.Transactor, logger *zap.Logger) *DefaultReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultReviewService{Reviews: reviews, Bookings: bookings, Providers: providers, Tx: tx, Logger: logger, Now: time.Now}
}

// Submit stores the client's review of a completed booking and folds the
// rating into the provider's average.
func (s *DefaultReviewService) Submit(ctx context.Context, actor models.Actor, bookingID string, rating int, comment string) (*models.Review, error) {
	const op = "review.Submit"
	if rating < MinRating || rating > MaxRating {
		return nil, apperror.InvalidInput(op, "rating must be between %d and %d", MinRating, MaxRating)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, apperror.InvalidInput(op, "comment exceeds %d characters", maxCommentLength)
	}

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleClient, b.ClientID) {
		return nil, apperror.NotAuthorized(op, "only the booking's client can review it")
	}
	if b.Status != models.StatusCompleted {
		return nil, apperror.InvalidTransition(op, "booking %s is %s, not completed", b.ID, b.State())
	}

	rev := &models.Review{
		ID:         uuid.New().String(),
		BookingID:  b.ID,
		ClientID:   b.ClientID,
		ProviderID: b.ProviderID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  s.Now(),
	}
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Reviews.Create(ctx, rev); err != nil {
			return err
		}
		return s.addRating(ctx, b.ProviderID, rating)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("review submitted",
		zap.String("bookingID", b.ID), zap.String("providerID", b.ProviderID), zap.Int("rating", rating))
	return rev, nil
}

func (s *DefaultReviewService) ListForProvider(ctx context.Context, providerID string) ([]models.Review, error) {
	if _, err := s.Providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.Reviews.ListByProvider(ctx, providerID)
}

func (s *DefaultReviewService) addRating(ctx context.Context, providerID string, rating int) error {
	for attempt := 1; ; attempt++ {
		p, err := s.Providers.GetByID(ctx, providerID)
		if err != nil {
			return err
		}
		p.AddRating(rating)
		p.UpdatedAt = s.Now()

		err = s.Providers.Update(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxUpdateAttempts {
			return err
		}
	}
}
