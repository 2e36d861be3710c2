// Package jobs runs background work: retrying failed notification fan-out
// through asynq and sweeping old notifications on a cron schedule.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"workstation/internal/cache"
	"workstation/internal/middleware"
	"workstation/internal/service"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeNotifyDeliver carries a service.NotifyInput to redeliver.
	TaskTypeNotifyDeliver = "notification:deliver"

	// QueueNotifications is the asynq queue fan-out retries run on.
	QueueNotifications = "notifications"

	notifyMaxRetry = 5
	notifyTimeout  = 10 * time.Second
)

// RedisOpt converts a REDIS_URL value into asynq connection options.
func RedisOpt(addr string) (asynq.RedisClientOpt, error) {
	opts, err := cache.ParseOptions(addr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}, nil
}

// NewNotifyTask wraps a fan-out batch as an asynq task.
func NewNotifyTask(in service.NotifyInput) (*asynq.Task, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal notify task: %w", err)
	}
	return asynq.NewTask(TaskTypeNotifyDeliver, payload,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(notifyMaxRetry),
		asynq.Timeout(notifyTimeout),
	), nil
}

// Queue enqueues fan-out retries. It implements service.RetryEnqueuer.
type Queue struct {
	client *asynq.Client
}

func NewQueue(opt asynq.RedisConnOpt) *Queue {
	return &Queue{client: asynq.NewClient(opt)}
}

// EnqueueNotify schedules in for redelivery.
func (q *Queue) EnqueueNotify(ctx context.Context, in service.NotifyInput) error {
	task, err := NewNotifyTask(in)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue notify task: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "notification retry enqueued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		slog.String("type", string(in.Type)),
	)
	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}
