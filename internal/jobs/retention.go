package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workstation/internal/middleware"
	"workstation/internal/observability"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// Purger deletes read notifications older than a cutoff.
type Purger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Retention periodically removes read notifications past their retention window.
type Retention struct {
	purger Purger
	days   int
	now    func() time.Time

	scheduler *cron.Cron
	entryID   cron.EntryID
}

// NewRetention keeps read notifications for days. Zero disables sweeping.
func NewRetention(purger Purger, days int) *Retention {
	return &Retention{purger: purger, days: days, now: time.Now}
}

// Sweep deletes everything read before the retention cutoff.
func (r *Retention) Sweep(ctx context.Context) (int64, error) {
	if r.days <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().AddDate(0, 0, -r.days)
	n, err := r.purger.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	observability.NotificationsPurged.Add(float64(n))
	return n, nil
}

// Start schedules Sweep with a standard cron spec such as "@daily" or "0 3 * * *".
func (r *Retention) Start(spec string) error {
	if r.days <= 0 {
		middleware.Logger.Info("notification retention disabled")
		return nil
	}
	r.scheduler = cron.New()
	id, err := r.scheduler.AddFunc(spec, r.run)
	if err != nil {
		return fmt.Errorf("invalid RETENTION_CRON %q: %w", spec, err)
	}
	r.entryID = id
	r.scheduler.Start()
	middleware.Logger.Info("notification retention scheduled",
		slog.String("cron", spec), slog.Int("days", r.days))
	return nil
}

// Stop halts the scheduler and waits for a running sweep.
func (r *Retention) Stop() {
	if r.scheduler == nil {
		return
	}
	<-r.scheduler.Stop().Done()
}

func (r *Retention) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := r.Sweep(ctx)
	if err != nil {
		observability.LogAsyncOperationError(ctx, "notification_retention", err, nil)
		return
	}
	observability.LogAsyncOperationEnd(ctx, "notification_retention", map[string]interface{}{"deleted": n})
}
