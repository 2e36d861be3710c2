package service

import (
	"context"
	"sync"
	"testing"

	"workstation/internal/aiworker"
	"workstation/internal/models"
	"workstation/internal/notifications"
	"workstation/internal/repository"
	"workstation/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Event   notifications.Event
	UserIDs []uint
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev notifications.Event, userIDs ...uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Event: ev, UserIDs: append([]uint(nil), userIDs...)})
	return nil
}

func (p *recordingPublisher) ofType(typ string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type env struct {
	db        *gorm.DB
	publisher *recordingPublisher

	notifications *NotificationService
	messaging     *MessagingService
	membership    *MembershipService
	projects      *ProjectService
	comments      *CommentService
	thoughts      *ThoughtService
	profiles      *ProfileService
	dashboard     *DashboardService
	ai            *AIWorkerService
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	pub := &recordingPublisher{}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	thoughtRepo := repository.NewThoughtRepository(db)

	catalog, err := aiworker.Default()
	require.NoError(t, err)

	notifier := NewNotificationService(repository.NewNotificationRepository(db), chatRepo, pub, 0)
	return &env{
		db:            db,
		publisher:     pub,
		notifications: notifier,
		messaging:     NewMessagingService(chatRepo, userRepo, notifier, pub),
		membership:    NewMembershipService(projectRepo, membershipRepo, userRepo, notifier),
		projects:      NewProjectService(projectRepo, membershipRepo, commentRepo, notifier),
		comments:      NewCommentService(commentRepo, projectRepo, userRepo, notifier),
		thoughts:      NewThoughtService(thoughtRepo, userRepo, notifier),
		profiles:      NewProfileService(userRepo),
		dashboard:     NewDashboardService(userRepo, projectRepo, thoughtRepo, notifier),
		ai:            NewAIWorkerService(repository.NewAIWorkerRepository(db), catalog),
	}
}

// notificationsOf returns every stored notification for userID, oldest first.
func (e *env) notificationsOf(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error)
	return rows
}

func (e *env) notificationCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).Count(&n).Error)
	return n
}
