package service

import (
	"context"
	"fmt"

	"workstation/internal/models"
	"workstation/internal/repository"
	"workstation/internal/validation"
)

// CommentService manages project comments.
type CommentService struct {
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifier    *NotificationService
}

// CreateCommentInput is the input for commenting on a project.
type CreateCommentInput struct {
	UserID          uint
	ProjectID       uint
	Content         string
	ParentCommentID *uint
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// AddComment stores a comment or a one-level reply and notifies the creator.
func (s *CommentService) AddComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	project, err := s.projectRepo.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	content, verr := validation.RequireText("Content", in.Content, validation.MaxCommentLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != project.ID {
			return nil, models.NewValidationError("Parent comment belongs to another project")
		}
		if parent.ParentCommentID != nil {
			return nil, models.NewValidationError("Replies cannot be nested")
		}
	}

	comment := &models.Comment{
		UserID:          in.UserID,
		ProjectID:       project.ID,
		Content:         content,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifier != nil && in.UserID != project.CreatorID {
		if author, err := s.userRepo.GetByID(ctx, in.UserID); err == nil {
			comment.User = author
			s.notifier.Notify(ctx, NotifyInput{
				ActorID:    in.UserID,
				Recipients: []uint{project.CreatorID},
				Type:       models.NotificationComment,
				Title:      "New comment on your project",
				Content:    fmt.Sprintf("%s commented on %s", author.Username, project.Title),
				Link:       projectLink(project.Slug) + "#comments",
			})
		}
	}
	return comment, nil
}

// ListComments returns top-level comments with their replies.
func (s *CommentService) ListComments(ctx context.Context, projectID uint) ([]models.Comment, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByProject(ctx, projectID)
}

// DeleteComment removes a comment written by userID.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
