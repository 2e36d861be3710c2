package service

import (
	"context"
	"fmt"

	"workstation/internal/cache"
	"workstation/internal/models"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// MembershipService runs the join-request state machine, direct member
// management, and project support.
type MembershipService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
	notifier       *NotificationService
}

// RequestToJoinInput is the input for asking to join a project.
type RequestToJoinInput struct {
	UserID      uint
	ProjectID   uint
	Message     string
	DesiredRole string
}

// AddMemberInput is the input for adding a member directly.
type AddMemberInput struct {
	ActorID   uint
	ProjectID uint
	UserID    uint
	Role      string
}

// SupportResult is the state after a support toggle.
type SupportResult struct {
	Supported       bool  `json:"supported"`
	SupportersCount int64 `json:"supporters_count"`
}

// NewMembershipService returns a new MembershipService.
func NewMembershipService(
	projectRepo repository.ProjectRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
) *MembershipService {
	return &MembershipService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

func (s *MembershipService) notify(ctx context.Context, in NotifyInput) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, in)
	}
}

// canManage reports whether userID is the creator or holds a managing role.
func (s *MembershipService) canManage(ctx context.Context, project *models.Project, userID uint) (bool, error) {
	if project.CreatorID == userID {
		return true, nil
	}
	m, err := s.membershipRepo.GetMembership(ctx, project.ID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role.CanManage(), nil
}

// RequestToJoin records a join request. A repeated request returns the
// existing record with created=false and sends nothing.
func (s *MembershipService) RequestToJoin(ctx context.Context, in RequestToJoinInput) (_ *models.JoinRequest, created bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "membership", "RequestToJoin",
		attribute.Int64("project.id", int64(in.ProjectID)))
	defer func() { observability.EndSpan(span, err) }()

	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, false, err
	}
	if project.CreatorID == in.UserID {
		return nil, false, models.NewValidationError("You already own this project")
	}
	member, err := s.membershipRepo.GetMembership(ctx, project.ID, in.UserID)
	if err != nil {
		return nil, false, err
	}
	if member != nil {
		return nil, false, models.NewValidationError("You are already a member of this project")
	}

	message := validation.SanitizeText(in.Message)
	req := &models.JoinRequest{
		UserID:      in.UserID,
		ProjectID:   project.ID,
		Message:     message,
		DesiredRole: validation.Truncate(validation.SanitizeText(in.DesiredRole), 100),
		Status:      models.JoinRequestStatusPending,
	}
	created, err = s.membershipRepo.CreateJoinRequest(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return req, false, nil
	}
	observability.JoinRequestTransitions.WithLabelValues(string(models.JoinRequestStatusPending)).Inc()

	requester, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return req, true, nil
	}
	s.notify(ctx, NotifyInput{
		ActorID:    in.UserID,
		Recipients: []uint{project.CreatorID},
		Type:       models.NotificationJoinRequest,
		Title:      fmt.Sprintf("%s wants to join your project", requester.Username),
		Content:    message,
		Link:       fmt.Sprintf("/projects/%s/requests/", project.Slug),
	})
	return req, true, nil
}

// Respond accepts or rejects a pending join request.
func (s *MembershipService) Respond(ctx context.Context, actorID, requestID uint, decision models.JoinDecision) (_ *models.JoinRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "membership", "Respond",
		attribute.String("join_request.decision", string(decision)))
	defer func() { observability.EndSpan(span, err) }()

	var status models.JoinRequestStatus
	switch decision {
	case models.JoinDecisionAccept:
		status = models.JoinRequestStatusAccepted
	case models.JoinDecisionReject:
		status = models.JoinRequestStatusRejected
	default:
		return nil, models.NewValidationError("Decision must be accept or reject")
	}

	req, err := s.membershipRepo.GetJoinRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	project := req.Project
	if project == nil {
		if project, err = s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
			return nil, err
		}
	}
	ok, err := s.canManage(ctx, project, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("Only project leads can respond to join requests")
	}

	role := validation.MapDesiredRole(req.DesiredRole)
	memberAdded, err := s.membershipRepo.ResolveJoinRequest(ctx, req, status, role)
	if err != nil {
		return nil, err
	}
	observability.JoinRequestTransitions.WithLabelValues(string(status)).Inc()

	if status != models.JoinRequestStatusAccepted {
		return req, nil
	}
	s.notify(ctx, NotifyInput{
		ActorID:    actorID,
		Recipients: []uint{req.UserID},
		Type:       models.NotificationJoinRequest,
		Title:      "Join request accepted",
		Content:    fmt.Sprintf("Your request to join %s was accepted!", project.Title),
		Link:       projectLink(project.Slug),
	})
	if memberAdded {
		s.notifyAdded(ctx, actorID, req.UserID, project, role)
	}
	return req, nil
}

// notifyAdded tells userID they joined project. Self-adds send nothing.
func (s *MembershipService) notifyAdded(ctx context.Context, actorID, userID uint, project *models.Project, role models.MembershipRole) {
	s.notify(ctx, NotifyInput{
		ActorID:    actorID,
		Recipients: []uint{userID},
		Type:       models.NotificationProjectInvite,
		Title:      "Added to project",
		Content:    fmt.Sprintf("You have been added to %s as %s", project.Title, role),
		Link:       projectLink(project.Slug),
	})
}

// AddMember grants a role to userID directly. Adding an existing member is a no-op.
func (s *MembershipService) AddMember(ctx context.Context, in AddMemberInput) (_ *models.ProjectMembership, created bool, err error) {
	role, ok := validation.ParseGrantableRole(in.Role)
	if !ok {
		return nil, false, models.NewValidationError("Invalid role")
	}
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, false, err
	}
	allowed, err := s.canManage(ctx, project, in.ActorID)
	if err != nil {
		return nil, false, err
	}
	if !allowed {
		return nil, false, models.NewForbiddenError("Only project leads can add members")
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, false, err
	}

	m := &models.ProjectMembership{UserID: in.UserID, ProjectID: project.ID, Role: role, IsActive: true}
	created, err = s.membershipRepo.AddMember(ctx, m)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.membershipRepo.GetMembership(ctx, project.ID, in.UserID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			m = existing
		}
		return m, false, nil
	}

	s.notifyAdded(ctx, in.ActorID, in.UserID, project, role)
	return m, true, nil
}

// ListJoinRequests returns a project's requests for its leads.
func (s *MembershipService) ListJoinRequests(ctx context.Context, actorID, projectID uint, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canManage(ctx, project, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("Only project leads can view join requests")
	}
	return s.membershipRepo.ListJoinRequests(ctx, projectID, status)
}

// MyJoinRequests returns the requests the user has sent.
func (s *MembershipService) MyJoinRequests(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	return s.membershipRepo.ListJoinRequestsByUser(ctx, userID)
}

// ListMembers returns a project's active members.
func (s *MembershipService) ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMembership, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.membershipRepo.ListMembers(ctx, projectID)
}

// ToggleSupport flips the user's support for a project.
func (s *MembershipService) ToggleSupport(ctx context.Context, userID, projectID uint) (_ *SupportResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "membership", "ToggleSupport")
	defer func() { observability.EndSpan(span, err) }()

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	supported, count, err := s.projectRepo.ToggleSupport(ctx, project.ID, userID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateProject(ctx, project.Slug)

	if !supported {
		observability.ProjectSupportToggles.WithLabelValues("removed").Inc()
		return &SupportResult{Supported: false, SupportersCount: count}, nil
	}
	observability.ProjectSupportToggles.WithLabelValues("added").Inc()

	if userID != project.CreatorID {
		if supporter, uerr := s.userRepo.GetByID(ctx, userID); uerr == nil {
			s.notify(ctx, NotifyInput{
				ActorID:    userID,
				Recipients: []uint{project.CreatorID},
				Type:       models.NotificationSupport,
				Title:      fmt.Sprintf("%s supported your project", supporter.Username),
				Content:    fmt.Sprintf("%s is now supporting %s", supporter.Username, project.Title),
				Link:       projectLink(project.Slug),
			})
		}
	}
	return &SupportResult{Supported: true, SupportersCount: count}, nil
}
