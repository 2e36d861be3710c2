package service

import (
	"context"

	"workstation/internal/cache"
	"workstation/internal/models"
	"workstation/internal/repository"
)

const dashboardListSize = 5

// DashboardService assembles the signed-in overview and site totals.
type DashboardService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	thoughtRepo repository.ThoughtRepository
	notifier    *NotificationService
}

// Dashboard is the signed-in user's overview.
type Dashboard struct {
	User                *models.User     `json:"user"`
	CreatedProjects     []models.Project `json:"created_projects"`
	JoinedProjects      []models.Project `json:"joined_projects"`
	SupportedProjects   []models.Project `json:"supported_projects"`
	UnreadMessages      int64            `json:"unread_messages"`
	UnreadNotifications int64            `json:"unread_notifications"`
	RecentThoughts      []models.Thought `json:"recent_thoughts"`
}

// Stats are platform totals.
type Stats struct {
	TotalProjects   int64                         `json:"total_projects"`
	OpenProjects    int64                         `json:"open_projects"`
	TotalUsers      int64                         `json:"total_users"`
	TotalThoughts   int64                         `json:"total_thoughts"`
	ProjectsByStage map[models.ProjectStage]int64 `json:"projects_by_stage"`
	UsersByType     map[models.UserType]int64     `json:"users_by_type"`
}

func NewDashboardService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	thoughtRepo repository.ThoughtRepository,
	notifier *NotificationService,
) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		thoughtRepo: thoughtRepo,
		notifier:    notifier,
	}
}

func (s *DashboardService) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{User: user}

	if d.CreatedProjects, err = s.projectRepo.ListByCreator(ctx, userID, dashboardListSize); err != nil {
		return nil, err
	}
	if d.JoinedProjects, err = s.projectRepo.ListJoinedBy(ctx, userID, dashboardListSize); err != nil {
		return nil, err
	}
	if d.SupportedProjects, err = s.projectRepo.ListSupportedBy(ctx, userID, dashboardListSize); err != nil {
		return nil, err
	}
	if d.RecentThoughts, err = s.thoughtRepo.ListByUser(ctx, userID, dashboardListSize); err != nil {
		return nil, err
	}

	counts, err := s.notifier.UnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.UnreadMessages = counts.Messages
	d.UnreadNotifications = counts.Notifications
	return d, nil
}

// Stats returns the platform totals, cached for cache.StatsTTL.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := cache.Aside(ctx, cache.StatsKey, &st, cache.StatsTTL, func() error {
		var err error
		if st.TotalProjects, err = s.projectRepo.Count(ctx); err != nil {
			return err
		}
		if st.OpenProjects, err = s.projectRepo.CountByStatus(ctx, models.ProjectStatusOpen); err != nil {
			return err
		}
		if st.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
			return err
		}
		if st.TotalThoughts, err = s.thoughtRepo.Count(ctx); err != nil {
			return err
		}
		if st.ProjectsByStage, err = s.projectRepo.CountByStage(ctx); err != nil {
			return err
		}
		st.UsersByType, err = s.userRepo.CountByType(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
