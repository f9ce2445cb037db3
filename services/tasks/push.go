package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/models"

	"github.com/hibiken/asynq"
)

const TypeNotificationPush = "notification:push"

func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationPush, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		// one push per stored notification
		asynq.TaskID(payload.NotificationID),
	}
	return task, opts, nil
}

// ParsePushTask decodes the payload of a push task.
func ParsePushTask(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid push payload: %w", err)
	}
	return p, nil
}

// Enqueuer is the subset of *asynq.Client used to queue tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuePusher queues pushes for the background worker.
type QueuePusher struct {
	Client Enqueuer
}

func (q *QueuePusher) Push(ctx context.Context, payload models.PushPayload) error {
	task, opts, err := NewPushTask(payload)
	if err != nil {
		return err
	}
	if _, err := q.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue push task: %w", err)
	}
	return nil
}
