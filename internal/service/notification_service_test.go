package service

import (
	"context"
	"errors"
	"testing"

	"workstation/internal/models"
	"workstation/internal/notifications"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingNotificationRepo struct {
	repository.NotificationRepository
}

func (failingNotificationRepo) CreateBatch(context.Context, []models.Notification) error {
	return models.NewInternalError(errors.New("db down"))
}

type recordingEnqueuer struct {
	inputs []NotifyInput
	err    error
}

func (r *recordingEnqueuer) EnqueueNotify(_ context.Context, in NotifyInput) error {
	r.inputs = append(r.inputs, in)
	return r.err
}

func TestRecipientsOf(t *testing.T) {
	got := recipientsOf(NotifyInput{ActorID: 1, Recipients: []uint{3, 1, 0, 2, 3, 2}})
	assert.Equal(t, []uint{3, 2}, got)
	assert.Empty(t, recipientsOf(NotifyInput{ActorID: 1, Recipients: []uint{1}}))
}

func TestDeliver_StoresAndPublishesPerRecipient(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")

	rows, err := e.notifications.Deliver(ctx, NotifyInput{
		ActorID:    alice.ID,
		Recipients: []uint{bob.ID, alice.ID, carol.ID, bob.ID},
		Type:       models.NotificationComment,
		Title:      "Hello",
		Link:       "/projects/x/",
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Len(t, e.notificationsOf(t, bob.ID), 1)
	assert.Len(t, e.notificationsOf(t, carol.ID), 1)
	assert.Empty(t, e.notificationsOf(t, alice.ID))

	events := e.publisher.ofType(notifications.EventNotification)
	require.Len(t, events, 2)
	assert.Equal(t, []uint{bob.ID}, events[0].UserIDs)
}

func TestDeliver_NoRecipientsIsNoop(t *testing.T) {
	e := setupEnv(t)
	rows, err := e.notifications.Deliver(context.Background(), NotifyInput{ActorID: 1, Recipients: []uint{1}, Type: models.NotificationSupport})
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Zero(t, e.notificationCount(t))
}

func TestNotify_FailureIsCountedAndQueued(t *testing.T) {
	svc := NewNotificationService(failingNotificationRepo{}, nil, nil, 0)
	q := &recordingEnqueuer{}
	svc.SetRetryEnqueuer(q)

	failed := promtest.ToFloat64(observability.NotificationsFailed.WithLabelValues(string(models.NotificationMention)))
	enqueued := promtest.ToFloat64(observability.NotificationRetries.WithLabelValues("enqueued"))

	in := NotifyInput{ActorID: 1, Recipients: []uint{2}, Type: models.NotificationMention, Title: "hi"}
	svc.Notify(context.Background(), in)

	require.Len(t, q.inputs, 1)
	assert.Equal(t, in, q.inputs[0])
	assert.Equal(t, failed+1, promtest.ToFloat64(observability.NotificationsFailed.WithLabelValues(string(models.NotificationMention))))
	assert.Equal(t, enqueued+1, promtest.ToFloat64(observability.NotificationRetries.WithLabelValues("enqueued")))
}

func TestNotify_EnqueueFailureIsSwallowed(t *testing.T) {
	svc := NewNotificationService(failingNotificationRepo{}, nil, nil, 0)
	svc.SetRetryEnqueuer(&recordingEnqueuer{err: errors.New("queue down")})

	before := promtest.ToFloat64(observability.NotificationRetries.WithLabelValues("enqueue_failed"))
	svc.Notify(context.Background(), NotifyInput{ActorID: 1, Recipients: []uint{2}, Type: models.NotificationSupport})
	assert.Equal(t, before+1, promtest.ToFloat64(observability.NotificationRetries.WithLabelValues("enqueue_failed")))
}

func TestNotify_SurvivesCanceledCaller(t *testing.T) {
	e := setupEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.notifications.Notify(ctx, NotifyInput{ActorID: alice.ID, Recipients: []uint{bob.ID}, Type: models.NotificationSupport, Title: "t"})
	assert.Len(t, e.notificationsOf(t, bob.ID), 1)
}

func TestMarkReadAndCounts(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	for i := 0; i < 3; i++ {
		_, err := e.notifications.Deliver(ctx, NotifyInput{ActorID: alice.ID, Recipients: []uint{bob.ID}, Type: models.NotificationSupport, Title: "t"})
		require.NoError(t, err)
	}
	rows := e.notificationsOf(t, bob.ID)
	require.Len(t, rows, 3)

	require.NoError(t, e.notifications.MarkRead(ctx, bob.ID, rows[0].ID))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(e.notifications.MarkRead(ctx, alice.ID, rows[1].ID)))

	counts, err := e.notifications.UnreadCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Notifications)
	assert.Zero(t, counts.Messages)

	n, err := e.notifications.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = e.notifications.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
