// Package reliability owns the provider reliability score and booking
// eligibility. Every mutation is a versioned read-modify-write of the
// provider document, so concurrent bookings never lose an update.
package reliability

import (
	"context"
	"errors"
	"time"

	"marketplace/apperror"
	providerRepo "marketplace/database/repository/provider"
	"marketplace/models"
	"marketplace/utils"

	"go.uber.org/zap"
)

const maxWriteAttempts = 5

// ReliabilityService is the contract the booking lifecycle and the admin
// API depend on.
type ReliabilityService interface {
	Get(ctx context.Context, providerID string) (models.ReliabilityStatus, error)
	ApplySecondAttemptPenalty(ctx context.Context, providerID string) (models.ReliabilityStatus, error)
	ApplyThirdStrikePenalty(ctx context.Context, providerID string) (models.ReliabilityStatus, error)
	IncreaseScoreOnCompletion(ctx context.Context, providerID string) (models.ReliabilityStatus, error)
	IsInPenaltyPeriod(ctx context.Context, providerID string) (bool, error)
	SetScore(ctx context.Context, actor models.Actor, providerID string, value int) (models.ReliabilityStatus, error)
	ResetRestrictions(ctx context.Context, actor models.Actor, providerID string) (models.ReliabilityStatus, error)
}

type Engine struct {
	Providers providerRepo.ProviderRepository
	Logger    *zap.Logger
	Metrics   *utils.Metrics
	Now       func() time.Time
}

func NewEngine(providers providerRepo.ProviderRepository, logger *zap.Logger, metrics *utils.Metrics) *Engine {
	return &Engine{Providers: providers, Logger: logger, Metrics: metrics, Now: time.Now}
}

// Get returns the effective record, persisting initialization or a lapsed
// penalty if the stored document is behind.
func (e *Engine) Get(ctx context.Context, providerID string) (models.ReliabilityStatus, error) {
	return e.mutate(ctx, "reliability.Get", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		return false
	})
}

func (e *Engine) ApplySecondAttemptPenalty(ctx context.Context, providerID string) (models.ReliabilityStatus, error) {
	st, err := e.mutate(ctx, "reliability.ApplySecondAttemptPenalty", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		st.ReliabilityScore = models.ClampScore(st.ReliabilityScore - models.SecondAttemptPenalty)
		return true
	})
	if err == nil {
		e.Metrics.Penalty("second_attempt")
		e.Logger.Info("second cancellation attempt penalty applied",
			zap.String("providerID", providerID), zap.Int("score", st.ReliabilityScore))
	}
	return st, err
}

// ApplyThirdStrikePenalty lowers the score and suspends bookings for the
// penalty window.
func (e *Engine) ApplyThirdStrikePenalty(ctx context.Context, providerID string) (models.ReliabilityStatus, error) {
	st, err := e.mutate(ctx, "reliability.ApplyThirdStrikePenalty", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		end := now.Add(models.PenaltyDuration)
		st.ReliabilityScore = models.ClampScore(st.ReliabilityScore - models.ThirdStrikePenalty)
		st.CancellationCount++
		st.RecentCancellations++
		st.LastPenaltyDate = &now
		st.PenaltyEndDate = &end
		st.BookingEnabled = false
		return true
	})
	if err == nil {
		e.Metrics.Penalty("third_strike")
		e.Logger.Warn("third strike penalty applied, bookings suspended",
			zap.String("providerID", providerID),
			zap.Int("score", st.ReliabilityScore),
			zap.Timep("penaltyEndDate", st.PenaltyEndDate))
	}
	return st, err
}

func (e *Engine) IncreaseScoreOnCompletion(ctx context.Context, providerID string) (models.ReliabilityStatus, error) {
	return e.mutate(ctx, "reliability.IncreaseScoreOnCompletion", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		if st.ReliabilityScore >= models.MaxReliabilityScore {
			return false
		}
		st.ReliabilityScore = models.ClampScore(st.ReliabilityScore + models.CompletionBonus)
		return true
	})
}

// IsInPenaltyPeriod reports whether the provider is barred from new
// bookings. A penalty whose end date has passed is cleared as a side effect.
func (e *Engine) IsInPenaltyPeriod(ctx context.Context, providerID string) (bool, error) {
	st, err := e.Get(ctx, providerID)
	if err != nil {
		return false, err
	}
	return st.InPenaltyPeriod, nil
}

// SetScore overrides the score. Out-of-range values are clamped.
func (e *Engine) SetScore(ctx context.Context, actor models.Actor, providerID string, value int) (models.ReliabilityStatus, error) {
	if !actor.IsAdmin() {
		return models.ReliabilityStatus{}, apperror.NotAuthorized("reliability.SetScore", "administrator role required")
	}
	st, err := e.mutate(ctx, "reliability.SetScore", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		st.ReliabilityScore = models.ClampScore(value)
		return true
	})
	if err == nil {
		e.Logger.Info("reliability score set by admin",
			zap.String("providerID", providerID), zap.String("adminID", actor.ID), zap.Int("score", st.ReliabilityScore))
	}
	return st, err
}

// ResetRestrictions re-enables bookings and clears the recent cancellation
// counter.
func (e *Engine) ResetRestrictions(ctx context.Context, actor models.Actor, providerID string) (models.ReliabilityStatus, error) {
	if !actor.IsAdmin() {
		return models.ReliabilityStatus{}, apperror.NotAuthorized("reliability.ResetRestrictions", "administrator role required")
	}
	st, err := e.mutate(ctx, "reliability.ResetRestrictions", providerID, func(st *models.ReliabilityStatus, now time.Time) bool {
		st.BookingEnabled = true
		st.PenaltyEndDate = nil
		st.RecentCancellations = 0
		return true
	})
	if err == nil {
		e.Logger.Info("booking restrictions reset by admin",
			zap.String("providerID", providerID), zap.String("adminID", actor.ID))
	}
	return st, err
}

// mutate loads the provider, applies fn to its effective record and writes
// the result back under the document version, retrying on conflict.
func (e *Engine) mutate(ctx context.Context, op, providerID string, fn func(st *models.ReliabilityStatus, now time.Time) bool) (models.ReliabilityStatus, error) {
	for attempt := 1; ; attempt++ {
		p, err := e.Providers.GetByID(ctx, providerID)
		if err != nil {
			return models.ReliabilityStatus{}, err
		}

		now := e.Now()
		st := p.ReliabilityRecord.Effective(now)
		lapsed := p.PenaltyEndDate != nil && st.PenaltyEndDate == nil
		changed := fn(&st, now)
		if !changed && !st.NeedsWrite {
			return st, nil
		}

		p.ReliabilityRecord = st.Record()
		p.UpdatedAt = now

		err = e.Providers.Update(ctx, p)
		if err == nil {
			if lapsed {
				e.Logger.Info("penalty period expired, bookings re-enabled", zap.String("providerID", providerID))
			}
			return p.ReliabilityRecord.Effective(now), nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxWriteAttempts {
			return models.ReliabilityStatus{}, err
		}
		e.Logger.Debug("reliability write conflict, retrying",
			zap.String("op", op), zap.String("providerID", providerID), zap.Int("attempt", attempt))
	}
}
