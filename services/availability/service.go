package availability

import (
	"context"
	"errors"
	"time"

	"marketplace/apperror"
	availabilityRepo "marketplace/database/repository/availability"
	"marketplace/models"

	"go.uber.org/zap"
)

// AvailabilityService reads and maintains provider availability records.
type AvailabilityService interface {
	Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error)
	SlotsFor(ctx context.Context, providerID, date string) ([]string, error)
	Update(ctx context.Context, actor models.Actor, providerID string, in UpdateInput) (*models.AvailabilityRecord, error)
	SetSpecialDate(ctx context.Context, actor models.Actor, providerID, date string, entry models.SpecialDate) (*models.AvailabilityRecord, error)
	ClearSpecialDate(ctx context.Context, actor models.Actor, providerID, date string) (*models.AvailabilityRecord, error)
}

// UpdateInput replaces the provider's schedule. Nil maps keep the stored
// value.
type UpdateInput struct {
	WeeklySchedule   map[models.Weekday]models.DaySchedule `json:"weeklySchedule"`
	SpecialDates     map[string]models.SpecialDate         `json:"specialDates"`
	TimeSlotDuration *int                                  `json:"timeSlotDuration"`
	BufferTime       *int                                  `json:"bufferTime"`
}

type DefaultAvailabilityService struct {
	Repo   availabilityRepo.AvailabilityRepository
	Step   time.Duration
	Logger *zap.Logger
	Now    func() time.Time
}

func NewAvailabilityService(repo availabilityRepo.AvailabilityRepository, step time.Duration, logger *zap.Logger) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{Repo: repo, Step: step, Logger: logger, Now: time.Now}
}

func (s *DefaultAvailabilityService) Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error) {
	return s.Repo.Get(ctx, providerID)
}

// SlotsFor resolves the provider's slots on an ISO date. A provider without
// a stored record gets the default window.
func (s *DefaultAvailabilityService) SlotsFor(ctx context.Context, providerID, date string) ([]string, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, apperror.InvalidInput("availability.SlotsFor", "date %q is not YYYY-MM-DD", date)
	}
	rec, err := s.Repo.Get(ctx, providerID)
	if errors.Is(err, apperror.ErrNotFound) {
		s.Logger.Debug("no availability record, using default window", zap.String("providerID", providerID))
		rec = &models.AvailabilityRecord{ProviderID: providerID}
	} else if err != nil {
		return nil, err
	}
	return ResolveSlots(rec, day, s.Step)
}

func (s *DefaultAvailabilityService) Update(ctx context.Context, actor models.Actor, providerID string, in UpdateInput) (*models.AvailabilityRecord, error) {
	return s.modify(ctx, actor, providerID, "availability.Update", func(rec *models.AvailabilityRecord) {
		if in.WeeklySchedule != nil {
			rec.WeeklySchedule = in.WeeklySchedule
		}
		if in.SpecialDates != nil {
			rec.SpecialDates = in.SpecialDates
		}
		if in.TimeSlotDuration != nil {
			rec.TimeSlotDuration = *in.TimeSlotDuration
		}
		if in.BufferTime != nil {
			rec.BufferTime = *in.BufferTime
		}
	})
}

func (s *DefaultAvailabilityService) SetSpecialDate(ctx context.Context, actor models.Actor, providerID, date string, entry models.SpecialDate) (*models.AvailabilityRecord, error) {
	return s.modify(ctx, actor, providerID, "availability.SetSpecialDate", func(rec *models.AvailabilityRecord) {
		rec.SpecialDates[date] = entry
	})
}

func (s *DefaultAvailabilityService) ClearSpecialDate(ctx context.Context, actor models.Actor, providerID, date string) (*models.AvailabilityRecord, error) {
	return s.modify(ctx, actor, providerID, "availability.ClearSpecialDate", func(rec *models.AvailabilityRecord) {
		delete(rec.SpecialDates, date)
	})
}

// modify applies fn to the provider's record, validates and saves it. Only
// the owning provider may change availability.
func (s *DefaultAvailabilityService) modify(ctx context.Context, actor models.Actor, providerID, op string, fn func(rec *models.AvailabilityRecord)) (*models.AvailabilityRecord, error) {
	if !actor.Is(models.RoleProvider, providerID) {
		return nil, apperror.NotAuthorized(op, "only the provider can change their availability")
	}

	rec, err := s.Repo.Get(ctx, providerID)
	if errors.Is(err, apperror.ErrNotFound) {
		rec = models.DefaultAvailability(providerID, s.Now())
	} else if err != nil {
		return nil, err
	}
	if rec.WeeklySchedule == nil {
		rec.WeeklySchedule = map[models.Weekday]models.DaySchedule{}
	}
	if rec.SpecialDates == nil {
		rec.SpecialDates = map[string]models.SpecialDate{}
	}

	fn(rec)
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.Now()
	if err := s.Repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.Logger.Info("availability updated", zap.String("providerID", providerID), zap.String("op", op))
	return rec, nil
}
