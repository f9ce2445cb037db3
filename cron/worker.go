package cron

import (
	"context"
	"fmt"
	"time"

	"marketplace/config"
	"marketplace/models"
	"marketplace/services/tasks"
	"marketplace/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends one push to the target's device.
type Deliverer interface {
	Deliver(ctx context.Context, p models.PushPayload) error
}

// PushWorker drains the notification push queue.
type PushWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// RedisOpt is the asynq connection for the push queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func NewPushWorker(opt asynq.RedisConnOpt, d Deliverer, logger *zap.Logger, metrics *utils.Metrics) *PushWorker {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		Logger:   logger.Sugar(),
		LogLevel: asynq.WarnLevel,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationPush, HandlePushTask(d, logger, metrics))
	return &PushWorker{srv: srv, mux: mux, logger: logger}
}

// Start launches the worker, retrying with backoff while Redis is not
// reachable.
func (w *PushWorker) Start(ctx context.Context) error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.srv.Start(w.mux); err == nil {
			w.logger.Info("push worker started")
			return nil
		}
		w.logger.Warn("push worker failed to start",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*2) * time.Second):
		}
	}
	return fmt.Errorf("push worker: giving up after %d attempts: %w", maxAttempts, err)
}

func (w *PushWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("push worker stopped")
}

// HandlePushTask delivers one queued push. Malformed payloads are not
// retried.
func HandlePushTask(d Deliverer, logger *zap.Logger, metrics *utils.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePushTask(task)
		if err != nil {
			logger.Error("dropping push task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		switch p.TargetRole {
		case models.RoleClient, models.RoleProvider:
		default:
			logger.Warn("push for unknown target role skipped", zap.String("role", string(p.TargetRole)))
			return nil
		}

		if err := d.Deliver(ctx, p); err != nil {
			metrics.NotificationFailure("push")
			logger.Warn("push delivery failed",
				zap.String("notificationID", p.NotificationID),
				zap.String("target", p.TargetID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
