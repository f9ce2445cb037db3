package provider

import (
	"context"
	"testing"
	"time"

	"marketplace/apperror"
	"marketplace/database/repository/memory"
	"marketplace/models"
	"marketplace/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var admin = models.Actor{ID: "admin", Role: models.RoleAdmin}

type notices []notification.Notice

func (n *notices) Notify(_ context.Context, x notification.Notice) error {
	*n = append(*n, x)
	return nil
}

func newService(t *testing.T) (*DefaultProviderService, *memory.Store, *notices) {
	t.Helper()
	store := memory.NewStore()
	sent := &notices{}
	svc, err := NewDefaultProviderService(store.Providers(), store.Users(), store.Availability(), sent, store, zap.NewNop())
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	return svc, store, sent
}

func TestRegisterCreatesRecords(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, RegisterInput{FullName: "Thandi M", Email: " Thandi@Example.com ", ServiceType: "plumbing"})
	require.NoError(t, err)
	assert.Equal(t, "thandi@example.com", p.Email)
	assert.False(t, p.DocumentsVerified)
	require.True(t, p.ReliabilityRecord.Initialized())
	assert.Equal(t, 100, *p.ReliabilityScore)

	rec, err := store.Availability().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, rec.WeeklySchedule[models.Sunday].Available)
	assert.Equal(t, "09:00", rec.WeeklySchedule[models.Monday].Start)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Other", Email: "thandi@example.com", ServiceType: "x"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Bad", Email: "not-an-email", ServiceType: "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRegisterClient(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	c, err := svc.RegisterClient(ctx, RegisterClientInput{FullName: "Sipho", Email: "sipho@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = svc.RegisterClient(ctx, RegisterClientInput{FullName: "Sipho", Email: "SIPHO@example.com"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	svc, _, sent := newService(t)
	ctx := context.Background()
	p, err := svc.Register(ctx, RegisterInput{FullName: "P", Email: "p@example.com", ServiceType: "cleaning"})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, models.Actor{ID: p.ID, Role: models.RoleProvider}, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	p, err = svc.Verify(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.True(t, p.DocumentsVerified)
	assert.NotNil(t, p.VerifiedAt)
	require.Len(t, *sent, 1)
	assert.Equal(t, models.NotifyProviderVerified, (*sent)[0].Type)
}

func TestSuspendAndReinstate(t *testing.T) {
	svc, store, sent := newService(t)
	ctx := context.Background()
	c, err := svc.RegisterClient(ctx, RegisterClientInput{FullName: "C", Email: "c@example.com"})
	require.NoError(t, err)
	target := models.Actor{ID: c.ID, Role: models.RoleClient}

	assert.ErrorIs(t, svc.Suspend(ctx, target, target, "spam", nil), apperror.ErrNotAuthorized)
	assert.ErrorIs(t, svc.Suspend(ctx, admin, target, "", nil), apperror.ErrInvalidInput)
	past := svc.Now().Add(-time.Hour)
	assert.ErrorIs(t, svc.Suspend(ctx, admin, target, "spam", &past), apperror.ErrInvalidInput)

	until := svc.Now().Add(48 * time.Hour)
	require.NoError(t, svc.Suspend(ctx, admin, target, "spam", &until))
	stored, err := store.Users().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSuspended(svc.Now()))
	assert.False(t, stored.IsSuspended(until))

	require.NoError(t, svc.Reinstate(ctx, admin, target))
	stored, err = store.Users().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSuspended(svc.Now()))
	assert.NotNil(t, stored.ReinstatedAt)

	require.Len(t, *sent, 2)
	assert.Equal(t, models.NotifyAccountSuspended, (*sent)[0].Type)
	assert.Equal(t, models.NotifyAccountReinstated, (*sent)[1].Type)

	assert.ErrorIs(t, svc.Suspend(ctx, admin, admin, "x", nil), apperror.ErrInvalidInput)
}

func TestUpdateFCMToken(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	p, err := svc.Register(ctx, RegisterInput{FullName: "P", Email: "p@example.com", ServiceType: "cleaning"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateFCMToken(ctx, models.Actor{ID: p.ID, Role: models.RoleProvider}, "tok-1"))
	stored, err := store.Providers().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored.FCMToken)

	assert.ErrorIs(t, svc.UpdateFCMToken(ctx, admin, "tok"), apperror.ErrNotAuthorized)
	assert.ErrorIs(t, svc.UpdateFCMToken(ctx, models.Actor{ID: p.ID, Role: models.RoleProvider}, " "), apperror.ErrInvalidInput)
}

func TestProviderReadsApplyLapsedPenalty(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, RegisterInput{FullName: "P", Email: "p@example.com", ServiceType: "cleaning"})
	require.NoError(t, err)

	stored, err := store.Providers().GetByID(ctx, p.ID)
	require.NoError(t, err)
	disabled := false
	ended := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	stored.BookingEnabled = &disabled
	stored.PenaltyEndDate = &ended
	require.NoError(t, store.Providers().Update(ctx, stored))

	got, err := svc.GetProvider(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BookingEnabled)
	assert.True(t, *got.BookingEnabled)
	assert.Nil(t, got.PenaltyEndDate)

	persisted, err := store.Providers().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, *persisted.BookingEnabled)
	assert.Nil(t, persisted.PenaltyEndDate)

	// ListProviders takes the same path.
	stored, err = store.Providers().GetByID(ctx, p.ID)
	require.NoError(t, err)
	stored.BookingEnabled = &disabled
	stored.PenaltyEndDate = &ended
	require.NoError(t, store.Providers().Update(ctx, stored))

	list, err := svc.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, *list[0].BookingEnabled)
	assert.Nil(t, list[0].PenaltyEndDate)
}

func TestProviderReadsInitializeReliability(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, store.Providers().Create(ctx, &models.Provider{ID: "legacy", Email: "legacy@example.com"}))

	got, err := svc.GetProvider(ctx, "legacy")
	require.NoError(t, err)
	require.NotNil(t, got.ReliabilityScore)
	assert.Equal(t, models.InitialReliabilityScore, *got.ReliabilityScore)
	assert.True(t, got.ReliabilityRecord.Initialized())

	// An active penalty is left alone.
	disabled := false
	future := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	got.BookingEnabled = &disabled
	got.PenaltyEndDate = &future
	require.NoError(t, store.Providers().Update(ctx, got))

	got, err = svc.GetProvider(ctx, "legacy")
	require.NoError(t, err)
	assert.False(t, *got.BookingEnabled)
	assert.Equal(t, future, *got.PenaltyEndDate)
}
