package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace/apperror"
	"marketplace/database/repository/memory"
	"marketplace/models"
	"marketplace/services/availability"
	"marketplace/services/catalog"
	"marketplace/services/notification"
	"marketplace/services/payment"
	"marketplace/services/reliability"
	"marketplace/services/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	client   = models.Actor{ID: "c1", Role: models.RoleClient}
	provider = models.Actor{ID: "p1", Role: models.RoleProvider}
	admin    = models.Actor{ID: "admin", Role: models.RoleAdmin}
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) types() []models.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NotificationType, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Type)
	}
	return out
}

func (n *recordingNotifier) last() notification.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notices[len(n.notices)-1]
}

type fixture struct {
	svc      *DefaultBookingService
	store    *memory.Store
	engine   *reliability.Engine
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.engine = reliability.NewEngine(f.store.Providers(), zap.NewNop(), nil)
	f.engine.Now = clock
	slots := availability.NewAvailabilityService(f.store.Availability(), time.Hour, zap.NewNop())

	svc, err := NewBookingService(
		f.store.Bookings(), f.store.Providers(), f.store.Users(),
		slots, f.engine, f.notifier, payment.NewPaymentHandler(zap.NewNop()),
		f.store, zap.NewNop(), nil,
	)
	require.NoError(t, err)
	svc.Now = clock
	services, err := catalog.NewCatalogService(f.store.Catalog(), f.store.Providers(), zap.NewNop())
	require.NoError(t, err)
	svc.Catalog = services
	f.svc = svc

	ctx := context.Background()
	require.NoError(t, f.store.Providers().Create(ctx, &models.Provider{
		ID:                "p1",
		Email:             "p1@example.com",
		DocumentsVerified: true,
		ReliabilityRecord: models.NewReliabilityRecord(),
	}))
	require.NoError(t, f.store.Users().Create(ctx, &models.Client{ID: "c1", Email: "c1@example.com"}))
	return f
}

func (f *fixture) book(t *testing.T, at string) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: at})
	require.NoError(t, err)
	return b
}

func (f *fixture) confirmed(t *testing.T) *models.Booking {
	t.Helper()
	b := f.book(t, "10:00")
	b, err := f.svc.Accept(context.Background(), provider, b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) status(t *testing.T) models.ReliabilityStatus {
	t.Helper()
	st, err := f.engine.Get(context.Background(), "p1")
	require.NoError(t, err)
	return st
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b := f.book(t, "9:00")
	assert.Equal(t, models.StatusPendingConfirmation, b.Status)
	assert.Equal(t, models.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, "09:00", b.Time)
	assert.Equal(t, "c1", b.ClientID)
	assert.NotEmpty(t, b.ID)

	n := f.notifier.last()
	assert.Equal(t, models.NotifyBookingCreated, n.Type)
	assert.Equal(t, models.RoleProvider, n.TargetRole)
	assert.Equal(t, "p1", n.TargetID)
	assert.Equal(t, b.ID, n.Metadata["bookingId"])
}

func TestCreateRejectsUnavailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "10:00")

	cases := map[string]CreateInput{
		"outside window": {ProviderID: "p1", Date: "2026-03-02", Time: "18:00"},
		"off step":       {ProviderID: "p1", Date: "2026-03-02", Time: "10:30"},
		"already held":   {ProviderID: "p1", Date: "2026-03-02", Time: "10:00"},
		"in the past":    {ProviderID: "p1", Date: "2026-02-27", Time: "10:00"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, client, in)
			assert.ErrorIs(t, err, apperror.ErrSlotUnavailable)
		})
	}

	_, err := f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "02/03/2026", Time: "10:00"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "ten"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCreateFreesSlotOfEndedBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "10:00")
	_, err := f.svc.CancelByClient(context.Background(), client, b.ID, "")
	require.NoError(t, err)

	again := f.book(t, "10:00")
	assert.NotEqual(t, b.ID, again.ID)
}

func TestCreateRequiresBookableProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.store.Providers().GetByID(ctx, "p1")
		require.NoError(t, err)
		p.DocumentsVerified = false
		require.NoError(t, f.store.Providers().Update(ctx, p))

		_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
		assert.ErrorIs(t, err, apperror.ErrProviderUnavailable)
	})

	t.Run("suspended", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.store.Providers().GetByID(ctx, "p1")
		require.NoError(t, err)
		p.Suspended = true
		require.NoError(t, f.store.Providers().Update(ctx, p))

		_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
		assert.ErrorIs(t, err, apperror.ErrProviderUnavailable)
	})

	t.Run("penalty period", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.ApplyThirdStrikePenalty(ctx, "p1")
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
		assert.ErrorIs(t, err, apperror.ErrProviderUnavailable)

		f.now = f.now.Add(models.PenaltyDuration)
		_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-09", Time: "10:00"})
		assert.NoError(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, client, CreateInput{ProviderID: "nope", Date: "2026-03-02", Time: "10:00"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestCreateRequiresActiveClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, provider, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	c, err := f.store.Users().GetByID(ctx, "c1")
	require.NoError(t, err)
	c.Suspended = true
	require.NoError(t, f.store.Users().Update(ctx, c))

	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}

func TestAcceptAndDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.book(t, "10:00")
	_, err := f.svc.Accept(ctx, client, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	_, err = f.svc.Accept(ctx, models.Actor{ID: "p2", Role: models.RoleProvider}, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	b, err = f.svc.Accept(ctx, provider, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, models.NotifyBookingAccepted, f.notifier.last().Type)

	_, err = f.svc.Decline(ctx, provider, b.ID, "busy")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	other := f.book(t, "11:00")
	other, err = f.svc.Decline(ctx, provider, other.ID, "  ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, other.Status)
	assert.Equal(t, "No reason provided", other.DeclineReason)
	assert.Equal(t, models.RoleClient, f.notifier.last().TargetRole)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "10:00")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Accept(context.Background(), provider, b.ID)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)
}

func TestCancelByClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)

	_, err := f.svc.CancelByClient(ctx, provider, b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	b, err = f.svc.CancelByClient(ctx, client, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Equal(t, models.CancelledByClient, b.CancelledBy)
	assert.Equal(t, "No reason provided", b.CancellationReason)
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, models.NotifyBookingCancelledByUser, f.notifier.last().Type)
	assert.Equal(t, 100, f.status(t).ReliabilityScore)

	_, err = f.svc.CancelByClient(ctx, client, b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestClientCannotCancelWhileRequestPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)
	_, err := f.svc.RequestCancellation(ctx, provider, b.ID, "sick")
	require.NoError(t, err)

	_, err = f.svc.CancelByClient(ctx, client, b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	_, err = f.svc.Complete(ctx, provider, b.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestThreeStrikeProtocol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)

	b, err := f.svc.RequestCancellation(ctx, provider, b.ID, "sick")
	require.NoError(t, err)
	assert.Equal(t, models.StateCancellationRequested, b.State())
	assert.Equal(t, 1, b.CancellationAttempts)
	assert.Equal(t, "sick", b.CancellationReason)
	assert.Equal(t, 100, f.status(t).ReliabilityScore)
	assert.Equal(t, models.NotifyCancellationRequested, f.notifier.last().Type)

	b, err = f.svc.RespondToCancellation(ctx, client, b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, b.State())
	assert.True(t, b.CancellationDeclined)
	assert.Equal(t, 1, b.CancellationAttempts)
	assert.Equal(t, models.NotifyCancellationDeclinedByUser, f.notifier.last().Type)

	b, err = f.svc.RequestCancellation(ctx, provider, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, b.CancellationAttempts)
	assert.Equal(t, models.StateCancellationRequested, b.State())
	assert.Equal(t, 95, f.status(t).ReliabilityScore)

	b, err = f.svc.RespondToCancellation(ctx, client, b.ID, false)
	require.NoError(t, err)

	b, err = f.svc.RequestCancellation(ctx, provider, b.ID, "still sick")
	require.NoError(t, err)
	assert.Equal(t, 3, b.CancellationAttempts)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.False(t, b.CancellationRequested)
	assert.True(t, b.ThirdStrikeCancellation)
	assert.Equal(t, models.CancelledByProvider, b.CancelledBy)

	st := f.status(t)
	assert.Equal(t, 80, st.ReliabilityScore)
	assert.False(t, st.BookingEnabled)
	assert.Equal(t, 1, st.CancellationCount)
	assert.Equal(t, 1, st.RecentCancellations)
	require.NotNil(t, st.PenaltyEndDate)
	assert.Equal(t, f.now.Add(models.PenaltyDuration), *st.PenaltyEndDate)

	n := f.notifier.last()
	assert.Equal(t, models.NotifyBookingCancelledByProvider, n.Type)
	assert.Equal(t, "3", n.Metadata["attempts"])
}

func TestRepeatedRequestWhilePendingCountsAsAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)

	for i := 0; i < 2; i++ {
		var err error
		b, err = f.svc.RequestCancellation(ctx, provider, b.ID, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, b.CancellationAttempts)
	assert.Equal(t, models.StateCancellationRequested, b.State())

	b, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.True(t, b.ThirdStrikeCancellation)
}

type failingThirdStrike struct {
	reliability.ReliabilityService
}

func (failingThirdStrike) ApplyThirdStrikePenalty(context.Context, string) (models.ReliabilityStatus, error) {
	return models.ReliabilityStatus{}, errors.New("score store unavailable")
}

func TestThirdStrikeRollsBackWhenPenaltyFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)
	for i := 0; i < 2; i++ {
		_, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
		require.NoError(t, err)
	}

	f.svc.Reliability = failingThirdStrike{f.engine}
	_, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
	require.Error(t, err)

	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CancellationAttempts)
	assert.Equal(t, models.StateCancellationRequested, stored.State())
}

func TestRequestCancellationRequiresConfirmedBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "10:00")

	_, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	b, err = f.svc.Accept(ctx, provider, b.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestCancellation(ctx, client, b.ID, "")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}

func TestClientAcceptsCancellation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.confirmed(t)
	b, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
	require.NoError(t, err)

	_, err = f.svc.RespondToCancellation(ctx, provider, b.ID, true)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	b, err = f.svc.RespondToCancellation(ctx, client, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Equal(t, models.CancelledByProvider, b.CancelledBy)
	assert.True(t, b.CancellationAccepted)
	assert.NotNil(t, b.CancellationAcceptedAt)
	assert.Equal(t, models.NotifyCancellationAcceptedByUser, f.notifier.last().Type)
	assert.Equal(t, 100, f.status(t).ReliabilityScore)

	_, err = f.svc.RespondToCancellation(ctx, client, b.ID, false)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestAdminResolvesCancellation(t *testing.T) {
	ctx := context.Background()

	t.Run("approve", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t)
		b, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
		require.NoError(t, err)

		pending, err := f.svc.ListPendingCancellations(ctx, admin)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		_, err = f.svc.ResolveCancellation(ctx, client, b.ID, true)
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

		b, err = f.svc.ResolveCancellation(ctx, admin, b.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, b.Status)
		assert.Equal(t, models.CancelledByAdmin, b.CancelledBy)
		assert.True(t, b.CancellationApproved)
		assert.True(t, b.RefundProcessed)
		assert.Equal(t, 35.0, b.RefundAmount)
		assert.NotNil(t, b.RefundDate)

		types := f.notifier.types()
		assert.Equal(t, []models.NotificationType{models.NotifyCancellationApproved, models.NotifyCancellationApproved}, types[len(types)-2:])

		pending, err = f.svc.ListPendingCancellations(ctx, admin)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("reject", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t)
		b, err := f.svc.RequestCancellation(ctx, provider, b.ID, "")
		require.NoError(t, err)

		b, err = f.svc.ResolveCancellation(ctx, admin, b.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.StateConfirmed, b.State())
		assert.True(t, b.CancellationRejected)
		assert.Equal(t, 1, b.CancellationAttempts)
	})

	t.Run("nothing pending", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t)
		_, err := f.svc.ResolveCancellation(ctx, admin, b.ID, true)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})
}

func TestCompleteCreditsProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.SetScore(ctx, admin, "p1", 90)
	require.NoError(t, err)

	b := f.book(t, "10:00")
	_, err = f.svc.Complete(ctx, provider, b.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = f.svc.Accept(ctx, provider, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, client, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	b, err = f.svc.Complete(ctx, provider, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, b.Status)
	assert.NotNil(t, b.CompletedAt)
	assert.Equal(t, 91, f.status(t).ReliabilityScore)
	assert.Equal(t, models.NotifyBookingCompleted, f.notifier.last().Type)
}

func TestCompleteAtMaxScoreLeavesScore(t *testing.T) {
	f := newFixture(t)
	b := f.confirmed(t)
	_, err := f.svc.Complete(context.Background(), provider, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, f.status(t).ReliabilityScore)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("push down")

	b := f.book(t, "10:00")
	b, err := f.svc.Accept(context.Background(), provider, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)

	stored, err := f.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestCreateWithService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Providers().Create(ctx, &models.Provider{ID: "p2", Email: "p2@example.com"}))
	require.NoError(t, f.store.Catalog().Create(ctx, &models.ServiceOffering{ID: "svc-1", ProviderID: "p1", Title: "Deep clean"}))
	require.NoError(t, f.store.Catalog().Create(ctx, &models.ServiceOffering{ID: "svc-2", ProviderID: "p2", Title: "Gardening"}))

	b, err := f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", ServiceID: " svc-1 ", Date: "2026-03-02", Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "svc-1", b.ServiceID)
	assert.Equal(t, "Deep clean", b.ServiceName)

	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", ServiceID: "svc-2", Date: "2026-03-02", Time: "11:00"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", ServiceID: "missing", Date: "2026-03-02", Time: "11:00"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	held, err := f.svc.List(ctx, client, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestCreateRequiresSubscriptionWhenConfigured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subs, err := subscription.NewSubscriptionService(f.store.Subscriptions(), f.store.Users(), payment.NewPaymentHandler(zap.NewNop()), f.store, zap.NewNop())
	require.NoError(t, err)
	subs.Now = func() time.Time { return f.now }
	f.svc.Subscriptions = subs
	f.svc.Policy.RequireSubscription = true

	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	_, err = subs.Subscribe(ctx, client, models.PaymentMethodCard)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, client, CreateInput{ProviderID: "p1", Date: "2026-03-02", Time: "10:00"})
	assert.NoError(t, err)
}

func TestPayBookingFee(t *testing.T) {
	ctx := context.Background()

	t.Run("card", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t)

		_, err := f.svc.PayBookingFee(ctx, provider, b.ID, models.PaymentMethodCard)
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

		b, err = f.svc.PayBookingFee(ctx, client, b.ID, models.PaymentMethodCard)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCompleted, b.PaymentStatus)
		assert.Equal(t, 35.0, b.BookingFee)
		assert.NotEmpty(t, b.PaymentID)
		assert.NotNil(t, b.PaidAt)
		assert.Equal(t, models.NotifyBookingPaid, f.notifier.last().Type)

		_, err = f.svc.PayBookingFee(ctx, client, b.ID, models.PaymentMethodCard)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("cash", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "10:00")
		b, err := f.svc.PayBookingFee(ctx, client, b.ID, models.PaymentMethodCash)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, b.PaymentStatus)
		assert.Nil(t, b.PaidAt)
	})

	t.Run("ended booking", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "10:00")
		_, err := f.svc.CancelByClient(ctx, client, b.ID, "")
		require.NoError(t, err)
		_, err = f.svc.PayBookingFee(ctx, client, b.ID, models.PaymentMethodCard)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("bad method", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "10:00")
		_, err := f.svc.PayBookingFee(ctx, client, b.ID, "bitcoin")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

// racingPayments cancels the booking while the charge is in flight.
type racingPayments struct {
	payment.PaymentHandler
	cancel func(bookingID string)
	voided []*models.Invoice
}

func (p *racingPayments) ProcessPayment(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	inv, err := p.PaymentHandler.ProcessPayment(ctx, req)
	if err == nil {
		p.cancel(req.BookingID)
	}
	return inv, err
}

func (p *racingPayments) Void(ctx context.Context, inv *models.Invoice) error {
	p.voided = append(p.voided, inv)
	return p.PaymentHandler.Void(ctx, inv)
}

func TestPayBookingFeeVoidsCaptureWhenBookingEnds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "10:00")

	payments := &racingPayments{
		PaymentHandler: payment.NewPaymentHandler(zap.NewNop()),
		cancel: func(id string) {
			_, err := f.svc.CancelByClient(ctx, client, id, "changed plans")
			require.NoError(t, err)
		},
	}
	f.svc.Payments = payments

	_, err := f.svc.PayBookingFee(ctx, client, b.ID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	require.Len(t, payments.voided, 1)
	assert.Equal(t, b.ID, payments.voided[0].BookingID)
	assert.Equal(t, models.PaymentVoided, payments.voided[0].Status)

	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)
	assert.Empty(t, stored.PaymentID)
}

func TestGetAndListAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "10:00")
	f.book(t, "11:00")

	_, err := f.svc.Get(ctx, client, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, admin, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, models.Actor{ID: "c2", Role: models.RoleClient}, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	list, err := f.svc.List(ctx, client, ListFilter{ClientID: "someone-else"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.svc.List(ctx, models.Actor{ID: "c2", Role: models.RoleClient}, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.List(ctx, admin, ListFilter{ProviderID: "p1", Statuses: []models.BookingStatus{models.StatusPendingConfirmation}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.ListPendingCancellations(ctx, provider)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}
