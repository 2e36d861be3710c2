package service

import (
	"context"
	"fmt"
	"strings"

	"workstation/internal/cache"
	"workstation/internal/models"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/validation"
)

// maxSlugAttempts bounds the create retry when a concurrent insert takes the chosen slug.
const maxSlugAttempts = 3

// ProjectService provides project lifecycle and engagement logic.
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
	commentRepo    repository.CommentRepository
	notifier       *NotificationService
}

// ProjectInput carries the editable project fields.
type ProjectInput struct {
	Title               string
	Description         string
	ShortDescription    string
	ProjectType         models.ProjectType
	Stage               models.ProjectStage
	Status              models.ProjectStatus
	CollaborationNeeded models.CollaborationType
	CoverImage          string
	Tags                []string
}

// UpdateProjectInput holds optional updates; nil fields are left unchanged.
type UpdateProjectInput struct {
	Title               *string
	Description         *string
	ShortDescription    *string
	ProjectType         *models.ProjectType
	Stage               *models.ProjectStage
	Status              *models.ProjectStatus
	CollaborationNeeded *models.CollaborationType
	CoverImage          *string
	Tags                *[]string
}

// PostUpdateInput is a progress update written by a project lead.
type PostUpdateInput struct {
	ActorID   uint
	ProjectID uint
	Title     string
	Content   string
}

// ProjectDetail is a project as seen by one viewer.
type ProjectDetail struct {
	Project         *models.Project `json:"project"`
	IsMember        bool            `json:"is_member"`
	IsSupporter     bool            `json:"is_supporter"`
	HasRequested    bool            `json:"has_requested"`
	SupportersCount int64           `json:"supporters_count"`
	MembersCount    int64           `json:"members_count"`
	CommentsCount   int64           `json:"comments_count"`
}

// NewProjectService returns a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	membershipRepo repository.MembershipRepository,
	commentRepo repository.CommentRepository,
	notifier *NotificationService,
) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
		commentRepo:    commentRepo,
		notifier:       notifier,
	}
}

// UniqueSlug picks the first free slug among base, base-1, base-2, ...
// ignoring the row identified by excludeID.
func (s *ProjectService) UniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := validation.SlugOrFallback(title)
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.projectRepo.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func validateEnums(t models.ProjectType, st models.ProjectStage, status models.ProjectStatus, c models.CollaborationType) error {
	switch {
	case !t.Valid():
		return models.NewValidationError("Invalid project type")
	case !st.Valid():
		return models.NewValidationError("Invalid stage")
	case !status.Valid():
		return models.NewValidationError("Invalid status")
	case !c.Valid():
		return models.NewValidationError("Invalid collaboration type")
	}
	return nil
}

func shortDescription(short, description string) string {
	short = validation.SanitizeText(short)
	if short == "" {
		short = validation.Truncate(description, validation.ShortDescLength)
	}
	return validation.Truncate(short, 500)
}

// CreateProject validates in, assigns a unique slug, and persists the
// project with its creator membership and tags.
func (s *ProjectService) CreateProject(ctx context.Context, creatorID uint, in ProjectInput) (_ *models.Project, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "projects", "CreateProject")
	defer func() { observability.EndSpan(span, err) }()

	if in.ProjectType == "" {
		in.ProjectType = models.ProjectTypeProject
	}
	if in.Stage == "" {
		in.Stage = models.ProjectStageIdea
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusOpen
	}
	if err := validateEnums(in.ProjectType, in.Stage, in.Status, in.CollaborationNeeded); err != nil {
		return nil, err
	}
	title, verr := validation.RequireText("Title", in.Title, validation.MaxTitleLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	description := validation.SanitizeText(in.Description)
	if description == "" {
		return nil, models.NewValidationError("Description cannot be empty")
	}

	project := &models.Project{
		Title:               title,
		Description:         description,
		ShortDescription:    shortDescription(in.ShortDescription, description),
		ProjectType:         in.ProjectType,
		CreatorID:           creatorID,
		Stage:               in.Stage,
		Status:              in.Status,
		CollaborationNeeded: in.CollaborationNeeded,
		CoverImage:          strings.TrimSpace(in.CoverImage),
	}

	for attempt := 1; ; attempt++ {
		project.ID = 0
		if project.Slug, err = s.UniqueSlug(ctx, title, 0); err != nil {
			return nil, err
		}
		err = s.projectRepo.Create(ctx, project, in.Tags)
		if err == nil {
			return project, nil
		}
		if models.ErrorCode(err) != models.CodeConflict || attempt == maxSlugAttempts {
			return nil, err
		}
	}
}

// UpdateProject applies in to a project owned by actorID. A title change re-slugs.
func (s *ProjectService) UpdateProject(ctx context.Context, actorID, projectID uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != actorID {
		return nil, models.NewForbiddenError("Only the creator can edit this project")
	}
	oldSlug := project.Slug

	if in.Title != nil {
		title, verr := validation.RequireText("Title", *in.Title, validation.MaxTitleLength)
		if verr != nil {
			return nil, models.NewValidationError(verr.Error())
		}
		if title != project.Title {
			project.Title = title
			if project.Slug, err = s.UniqueSlug(ctx, title, project.ID); err != nil {
				return nil, err
			}
		}
	}
	if in.Description != nil {
		d := validation.SanitizeText(*in.Description)
		if d == "" {
			return nil, models.NewValidationError("Description cannot be empty")
		}
		project.Description = d
	}
	if in.ShortDescription != nil {
		project.ShortDescription = shortDescription(*in.ShortDescription, project.Description)
	}
	if in.ProjectType != nil {
		project.ProjectType = *in.ProjectType
	}
	if in.Stage != nil {
		project.Stage = *in.Stage
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if in.CollaborationNeeded != nil {
		project.CollaborationNeeded = *in.CollaborationNeeded
	}
	if in.CoverImage != nil {
		project.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if err := validateEnums(project.ProjectType, project.Stage, project.Status, project.CollaborationNeeded); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project, in.Tags); err != nil {
		return nil, err
	}
	cache.InvalidateProject(ctx, oldSlug)
	if oldSlug != project.Slug {
		cache.InvalidateProject(ctx, project.Slug)
	}
	return project, nil
}

// ViewProject counts a detail view and returns the project with the viewer's
// relationship flags. viewerID 0 is an anonymous viewer.
func (s *ProjectService) ViewProject(ctx context.Context, viewerID uint, slug string) (_ *ProjectDetail, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "projects", "ViewProject")
	defer func() { observability.EndSpan(span, err) }()

	project, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	views, err := s.projectRepo.IncrementViews(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.ViewsCount = views

	detail := &ProjectDetail{Project: project}
	if detail.SupportersCount, err = s.projectRepo.SupporterCount(ctx, project.ID); err != nil {
		return nil, err
	}
	if detail.MembersCount, err = s.membershipRepo.CountMembers(ctx, project.ID); err != nil {
		return nil, err
	}
	if s.commentRepo != nil {
		if detail.CommentsCount, err = s.commentRepo.CountByProject(ctx, project.ID); err != nil {
			return nil, err
		}
	}
	if viewerID == 0 {
		return detail, nil
	}

	member, err := s.membershipRepo.GetMembership(ctx, project.ID, viewerID)
	if err != nil {
		return nil, err
	}
	detail.IsMember = member != nil
	if detail.IsSupporter, err = s.projectRepo.IsSupporter(ctx, project.ID, viewerID); err != nil {
		return nil, err
	}
	if detail.HasRequested, err = s.membershipRepo.HasRequested(ctx, project.ID, viewerID); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListProjects returns a bounded window of projects, featured first.
func (s *ProjectService) ListProjects(ctx context.Context, limit, offset int) ([]models.Project, error) {
	return s.projectRepo.List(ctx, limit, offset)
}

// PostUpdate publishes a progress update and notifies supporters and members.
func (s *ProjectService) PostUpdate(ctx context.Context, in PostUpdateInput) (_ *models.ProjectUpdate, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "projects", "PostUpdate")
	defer func() { observability.EndSpan(span, err) }()

	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != in.ActorID {
		m, err := s.membershipRepo.GetMembership(ctx, project.ID, in.ActorID)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.Role.CanManage() {
			return nil, models.NewForbiddenError("Only project leads can post updates")
		}
	}

	title, verr := validation.RequireText("Title", in.Title, validation.MaxTitleLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	content, verr := validation.RequireText("Content", in.Content, validation.MaxMessageLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	update := &models.ProjectUpdate{ProjectID: project.ID, AuthorID: in.ActorID, Title: title, Content: content}
	if err := s.projectRepo.CreateUpdate(ctx, update); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		supporters, err := s.projectRepo.SupporterIDs(ctx, project.ID)
		if err != nil {
			return update, nil
		}
		members, err := s.membershipRepo.MemberIDs(ctx, project.ID)
		if err != nil {
			return update, nil
		}
		s.notifier.Notify(ctx, NotifyInput{
			ActorID:    in.ActorID,
			Recipients: append(supporters, members...),
			Type:       models.NotificationComment,
			Title:      fmt.Sprintf("New update from %s", project.Title),
			Content:    title,
			Link:       projectLink(project.Slug) + "#updates",
		})
	}
	return update, nil
}

// ListUpdates returns a project's recent updates.
func (s *ProjectService) ListUpdates(ctx context.Context, projectID uint, limit int) ([]models.ProjectUpdate, error) {
	return s.projectRepo.ListUpdates(ctx, projectID, limit)
}
