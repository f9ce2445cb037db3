package cron

import (
	"context"
	"errors"
	"testing"

	"marketplace/models"
	"marketplace/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	got []models.PushPayload
	err error
}

func (f *fakeDeliverer) Deliver(_ context.Context, p models.PushPayload) error {
	f.got = append(f.got, p)
	return f.err
}

func pushTask(t *testing.T, p models.PushPayload) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewPushTask(p)
	require.NoError(t, err)
	return task
}

func TestHandlePushTaskDelivers(t *testing.T) {
	d := &fakeDeliverer{}
	h := HandlePushTask(d, zap.NewNop(), nil)

	p := models.PushPayload{NotificationID: "n1", TargetRole: models.RoleClient, TargetID: "c1", Title: "Booking accepted"}
	require.NoError(t, h(context.Background(), pushTask(t, p)))
	require.Len(t, d.got, 1)
	assert.Equal(t, p, d.got[0])
}

func TestHandlePushTaskSkipsMalformedPayload(t *testing.T) {
	d := &fakeDeliverer{}
	h := HandlePushTask(d, zap.NewNop(), nil)

	err := h(context.Background(), asynq.NewTask(tasks.TypeNotificationPush, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, d.got)
}

func TestHandlePushTaskIgnoresUnknownRole(t *testing.T) {
	d := &fakeDeliverer{}
	h := HandlePushTask(d, zap.NewNop(), nil)

	err := h(context.Background(), pushTask(t, models.PushPayload{NotificationID: "n1", TargetRole: models.RoleAdmin}))
	assert.NoError(t, err)
	assert.Empty(t, d.got)
}

func TestHandlePushTaskReturnsDeliveryError(t *testing.T) {
	d := &fakeDeliverer{err: errors.New("fcm unavailable")}
	h := HandlePushTask(d, zap.NewNop(), nil)

	err := h(context.Background(), pushTask(t, models.PushPayload{NotificationID: "n1", TargetRole: models.RoleProvider, TargetID: "p1"}))
	assert.Error(t, err)
}
