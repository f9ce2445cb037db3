package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/apperror"
	bookingRepo "marketplace/database/repository/booking"
	"marketplace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(id string, created time.Time) *models.Booking {
	return &models.Booking{
		ID:         id,
		ClientID:   "client-1",
		ProviderID: "provider-1",
		Date:       "2026-03-02",
		Time:       "09:00",
		Status:     models.StatusPendingConfirmation,
		CreatedAt:  created,
	}
}

func TestBookingUpdateRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()
	require.NoError(t, repo.Create(ctx, newBooking("b1", time.Now())))

	first, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)

	first.Status = models.StatusConfirmed
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	second.Status = models.StatusDeclined
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	stored, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestTransactionRollsBackAllWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := store.Bookings()
	providers := store.Providers()

	require.NoError(t, bookings.Create(ctx, newBooking("b1", time.Now())))
	require.NoError(t, providers.Create(ctx, &models.Provider{ID: "provider-1", Email: "p@example.com"}))

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		b, err := bookings.GetByID(ctx, "b1")
		if err != nil {
			return err
		}
		b.Status = models.StatusCancelled
		b.CancelledBy = models.CancelledByProvider
		if err := bookings.Update(ctx, b); err != nil {
			return err
		}
		p, err := providers.GetByID(ctx, "provider-1")
		if err != nil {
			return err
		}
		p.CancellationCount = 3
		if err := providers.Update(ctx, p); err != nil {
			return err
		}
		if err := bookings.Create(ctx, newBooking("b2", time.Now())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := bookings.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingConfirmation, b.Status)
	assert.Equal(t, int64(0), b.Version)

	p, err := providers.GetByID(ctx, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.CancellationCount)

	_, err = bookings.GetByID(ctx, "b2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReadsWaitForRunningTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := store.Bookings()
	require.NoError(t, bookings.Create(ctx, newBooking("b1", time.Now())))

	written := make(chan struct{})
	seen := make(chan models.BookingStatus, 1)
	go func() {
		<-written
		b, err := bookings.GetByID(ctx, "b1")
		if err != nil {
			seen <- ""
			return
		}
		seen <- b.Status
	}()

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		b, err := bookings.GetByID(ctx, "b1")
		if err != nil {
			return err
		}
		b.Status = models.StatusCancelled
		if err := bookings.Update(ctx, b); err != nil {
			return err
		}
		close(written)
		select {
		case <-seen:
			t.Error("read completed while the transaction was still open")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	select {
	case status := <-seen:
		assert.Equal(t, models.StatusPendingConfirmation, status)
	case <-time.After(time.Second):
		t.Fatal("read never completed")
	}
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newBooking("old", base)))
	require.NoError(t, repo.Create(ctx, newBooking("new", base.Add(time.Hour))))
	other := newBooking("other", base)
	other.ClientID = "client-2"
	require.NoError(t, repo.Create(ctx, other))

	out, err := repo.List(ctx, bookingRepo.BookingFilter{ClientID: "client-1"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "new", out[0].ID)
	assert.Equal(t, "old", out[1].ID)
}

func TestAvailabilitySaveStoresCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Availability()
	rec := models.DefaultAvailability("provider-1", time.Now())
	require.NoError(t, repo.Save(ctx, rec))

	rec.SpecialDates["2026-12-25"] = models.SpecialDate{Available: false}

	stored, err := repo.Get(ctx, "provider-1")
	require.NoError(t, err)
	assert.Empty(t, stored.SpecialDates)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReviewUniquePerBooking(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Reviews()
	require.NoError(t, repo.Create(ctx, &models.Review{ID: "r1", BookingID: "b1", ProviderID: "p1", Rating: 5}))

	err := repo.Create(ctx, &models.Review{ID: "r2", BookingID: "b1", ProviderID: "p1", Rating: 1})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	out, err := repo.ListByProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
