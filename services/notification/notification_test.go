package notification

import (
	"context"
	"errors"
	"testing"

	"marketplace/database/repository/memory"
	"marketplace/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPusher struct {
	pushed []models.PushPayload
	err    error
}

func (p *recordingPusher) Push(_ context.Context, payload models.PushPayload) error {
	p.pushed = append(p.pushed, payload)
	return p.err
}

func TestNotifyStoresAndQueues(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Notifications()
	pusher := &recordingPusher{}
	svc, err := NewDefaultNotificationService(repo, pusher, zap.NewNop(), nil)
	require.NoError(t, err)

	err = svc.Notify(ctx, Notice{
		TargetRole: models.RoleClient,
		TargetID:   "c1",
		Type:       models.NotifyBookingAccepted,
		Message:    "Your booking was accepted",
		Metadata:   map[string]string{"bookingId": "b1"},
	})
	require.NoError(t, err)

	client := models.Actor{ID: "c1", Role: models.RoleClient}
	inbox, err := svc.ListForTarget(ctx, client, true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.False(t, inbox[0].Read)
	assert.Equal(t, "b1", inbox[0].Metadata["bookingId"])

	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, inbox[0].ID, pusher.pushed[0].NotificationID)
	assert.Equal(t, "Booking accepted", pusher.pushed[0].Title)
	assert.Equal(t, "b1", pusher.pushed[0].Data["bookingId"])
	assert.Equal(t, "client", pusher.pushed[0].Data["role"])

	require.NoError(t, svc.MarkRead(ctx, client, inbox[0].ID))
	unread, err := svc.ListForTarget(ctx, client, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// another party cannot mark it
	err = svc.MarkRead(ctx, models.Actor{ID: "c2", Role: models.RoleClient}, inbox[0].ID)
	assert.Error(t, err)
}

func TestNotifyQueueFailureKeepsDocument(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Notifications()
	svc, err := NewDefaultNotificationService(repo, &recordingPusher{err: errors.New("redis down")}, zap.NewNop(), nil)
	require.NoError(t, err)

	err = svc.Notify(ctx, Notice{TargetRole: models.RoleProvider, TargetID: "p1", Type: models.NotifyBookingCreated, Message: "x"})
	assert.Error(t, err)

	stored, err := repo.ListForTarget(ctx, models.RoleProvider, "p1", false)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

type fakeSender struct {
	sent []*messaging.Message
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/x/messages/1", nil
}

func TestFCMDeliveryResolvesToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Providers().Create(ctx, &models.Provider{ID: "p1", Email: "p1@example.com", FCMToken: "tok-p1"}))
	require.NoError(t, store.Users().Create(ctx, &models.Client{ID: "c1", Email: "c1@example.com"}))

	sender := &fakeSender{}
	d := &FCMDelivery{Sender: sender, Users: store.Users(), Providers: store.Providers(), Logger: zap.NewNop()}

	require.NoError(t, d.Deliver(ctx, models.PushPayload{TargetRole: models.RoleProvider, TargetID: "p1", Title: "t", Body: "b"}))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "tok-p1", sender.sent[0].Token)
	assert.Equal(t, "t", sender.sent[0].Notification.Title)

	// client without a token is skipped
	require.NoError(t, d.Deliver(ctx, models.PushPayload{TargetRole: models.RoleClient, TargetID: "c1"}))
	assert.Len(t, sender.sent, 1)

	assert.Error(t, d.Deliver(ctx, models.PushPayload{TargetRole: models.RoleClient, TargetID: "missing"}))
}
