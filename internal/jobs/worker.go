package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"workstation/internal/middleware"
	"workstation/internal/models"
	"workstation/internal/observability"
	"workstation/internal/service"

	"github.com/hibiken/asynq"
)

// Deliverer writes a fan-out batch. *service.NotificationService satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, in service.NotifyInput) ([]models.Notification, error)
}

// Worker consumes the notification retry queue.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer Deliverer

	mu      sync.Mutex
	running bool
}

func NewWorker(opt asynq.RedisConnOpt, deliverer Deliverer) *Worker {
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{QueueNotifications: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			middleware.Logger.ErrorContext(ctx, "background task failed",
				slog.String("task_type", task.Type()),
				slog.Int("retried", retried),
				slog.Int("max_retry", maxRetry),
				slog.String("error", err.Error()),
			)
		}),
	})
	w := &Worker{server: server, mux: asynq.NewServeMux(), deliverer: deliverer}
	w.mux.HandleFunc(TaskTypeNotifyDeliver, w.HandleNotifyTask)
	return w
}

// HandleNotifyTask redelivers one batch. A malformed payload is not retried.
func (w *Worker) HandleNotifyTask(ctx context.Context, t *asynq.Task) error {
	var in service.NotifyInput
	if err := json.Unmarshal(t.Payload(), &in); err != nil {
		return fmt.Errorf("decode notify task: %v: %w", err, asynq.SkipRetry)
	}

	fields := map[string]interface{}{"notification_type": string(in.Type), "recipients": len(in.Recipients)}
	observability.LogAsyncOperationStart(ctx, "notification_retry", fields)
	rows, err := w.deliverer.Deliver(ctx, in)
	if err != nil {
		observability.NotificationRetries.WithLabelValues("failed").Inc()
		observability.LogAsyncOperationError(ctx, "notification_retry", err, fields)
		return err
	}
	observability.NotificationRetries.WithLabelValues("delivered").Inc()
	fields["stored"] = len(rows)
	observability.LogAsyncOperationEnd(ctx, "notification_retry", fields)
	return nil
}

// Start runs the asynq server in the background.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start notification worker: %w", err)
	}
	w.running = true
	middleware.Logger.Info("notification worker started", slog.String("queue", QueueNotifications))
	return nil
}

// Stop waits for in-flight tasks and shuts the server down.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.server.Shutdown()
	w.running = false
	middleware.Logger.Info("notification worker stopped")
}
