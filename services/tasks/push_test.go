package tasks

import (
	"context"
	"testing"

	"marketplace/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestQueuePusherEnqueuesPushTask(t *testing.T) {
	q := &fakeEnqueuer{}
	pusher := &QueuePusher{Client: q}

	payload := models.PushPayload{
		NotificationID: "n1",
		TargetRole:     models.RoleProvider,
		TargetID:       "p1",
		Title:          "New booking request",
		Data:           map[string]string{"bookingId": "b1"},
	}
	require.NoError(t, pusher.Push(context.Background(), payload))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeNotificationPush, q.tasks[0].Type())

	decoded, err := ParsePushTask(q.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestParsePushTaskRejectsGarbage(t *testing.T) {
	_, err := ParsePushTask(asynq.NewTask(TypeNotificationPush, []byte("{")))
	assert.Error(t, err)
}
