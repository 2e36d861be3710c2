// Package service provides the application's core operations: messaging,
// notification fan-out, membership, projects, and content.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workstation/internal/cache"
	"workstation/internal/middleware"
	"workstation/internal/models"
	"workstation/internal/notifications"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultNotifyTimeout bounds a fan-out write when no timeout is configured.
const DefaultNotifyTimeout = 2 * time.Second

// EventPublisher pushes realtime events to users' channels.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev notifications.Event, userIDs ...uint) error
}

// RetryEnqueuer hands a failed fan-out batch to a background queue.
type RetryEnqueuer interface {
	EnqueueNotify(ctx context.Context, in NotifyInput) error
}

// NotifyInput describes one fan-out: the same notification for every recipient.
type NotifyInput struct {
	ActorID    uint                    `json:"actor_id"`
	Recipients []uint                  `json:"recipients"`
	Type       models.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Content    string                  `json:"content"`
	Link       string                  `json:"link"`
}

// UnreadCounts is the badge summary for a user.
type UnreadCounts struct {
	Messages      int64 `json:"messages"`
	Notifications int64 `json:"notifications"`
}

// NotificationService writes and reads per-user notifications.
type NotificationService struct {
	repo      repository.NotificationRepository
	chatRepo  repository.ChatRepository
	publisher EventPublisher
	retry     RetryEnqueuer
	timeout   time.Duration
}

// NewNotificationService returns a new NotificationService. publisher and
// retry may be nil.
func NewNotificationService(
	repo repository.NotificationRepository,
	chatRepo repository.ChatRepository,
	publisher EventPublisher,
	timeout time.Duration,
) *NotificationService {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &NotificationService{
		repo:      repo,
		chatRepo:  chatRepo,
		publisher: publisher,
		timeout:   timeout,
	}
}

// SetRetryEnqueuer wires the background retry queue.
func (s *NotificationService) SetRetryEnqueuer(r RetryEnqueuer) {
	s.retry = r
}

// recipientsOf removes the actor, zero ids, and duplicates, keeping first-seen order.
func recipientsOf(in NotifyInput) []uint {
	seen := make(map[uint]bool, len(in.Recipients))
	out := make([]uint, 0, len(in.Recipients))
	for _, id := range in.Recipients {
		if id == 0 || id == in.ActorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Notify fans in out to its recipients. It runs detached from ctx
// cancellation and bounded by the configured timeout. Failures are logged,
// counted, and queued for retry; they are never returned.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if _, err := s.Deliver(ctx, in); err != nil {
		observability.NotificationsFailed.WithLabelValues(string(in.Type)).Inc()
		middleware.Logger.ErrorContext(ctx, "notification fan-out failed",
			slog.String("type", string(in.Type)),
			slog.Int("recipients", len(in.Recipients)),
			slog.String("error", err.Error()),
		)
		if s.retry == nil {
			return
		}
		if qErr := s.retry.EnqueueNotify(ctx, in); qErr != nil {
			observability.NotificationRetries.WithLabelValues("enqueue_failed").Inc()
			middleware.Logger.ErrorContext(ctx, "failed to enqueue notification retry", slog.String("error", qErr.Error()))
			return
		}
		observability.NotificationRetries.WithLabelValues("enqueued").Inc()
	}
}

// Deliver writes one notification per distinct recipient and publishes each
// row. It returns the stored rows; a publish failure is logged only.
func (s *NotificationService) Deliver(ctx context.Context, in NotifyInput) (_ []models.Notification, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "notifications", "Deliver",
		attribute.String("notification.type", string(in.Type)))
	defer func() { observability.EndSpan(span, err) }()

	recipients := recipientsOf(in)
	if len(recipients) == 0 {
		return nil, nil
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, models.Notification{
			UserID:           id,
			NotificationType: in.Type,
			Title:            validation.Truncate(in.Title, 200),
			Content:          in.Content,
			Link:             in.Link,
		})
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("store %s notifications: %w", in.Type, err)
	}
	observability.NotificationsCreated.WithLabelValues(string(in.Type)).Add(float64(len(rows)))
	cache.InvalidateUnread(ctx, recipients...)

	if s.publisher != nil {
		for i := range rows {
			ev := notifications.Event{Type: notifications.EventNotification, Payload: rows[i]}
			if err := s.publisher.PublishEvent(ctx, ev, rows[i].UserID); err != nil {
				middleware.Logger.WarnContext(ctx, "notification publish failed",
					slog.Uint64("user_id", uint64(rows[i].UserID)), slog.String("error", err.Error()))
				continue
			}
			observability.WebSocketEventsTotal.WithLabelValues(notifications.EventNotification).Inc()
		}
	}
	return rows, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.repo.List(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one of the user's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	cache.InvalidateUnread(ctx, userID)
	return nil
}

// MarkAllRead marks every unread notification read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	cache.InvalidateUnread(ctx, userID)
	return n, nil
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// UnreadCounts returns message and notification badges, cached briefly.
func (s *NotificationService) UnreadCounts(ctx context.Context, userID uint) (*UnreadCounts, error) {
	var counts UnreadCounts
	err := cache.Aside(ctx, cache.UnreadCountsKey(userID), &counts, cache.UnreadCountsTTL, func() error {
		n, err := s.repo.UnreadCount(ctx, userID)
		if err != nil {
			return err
		}
		counts.Notifications = n
		if s.chatRepo != nil {
			m, err := s.chatRepo.UnreadCount(ctx, userID)
			if err != nil {
				return err
			}
			counts.Messages = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
