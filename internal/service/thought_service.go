package service

import (
	"context"
	"fmt"

	"workstation/internal/models"
	"workstation/internal/repository"
	"workstation/internal/validation"
)

// ThoughtService manages short posts and their mentions.
type ThoughtService struct {
	thoughtRepo repository.ThoughtRepository
	userRepo    repository.UserRepository
	notifier    *NotificationService
}

// CreateThoughtInput is the input for posting a thought.
type CreateThoughtInput struct {
	UserID  uint
	Content string
	Tags    []string
}

// LikeResult is the state after a like toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// NewThoughtService returns a new ThoughtService.
func NewThoughtService(thoughtRepo repository.ThoughtRepository, userRepo repository.UserRepository, notifier *NotificationService) *ThoughtService {
	return &ThoughtService{thoughtRepo: thoughtRepo, userRepo: userRepo, notifier: notifier}
}

// CreateThought stores the thought and notifies each existing @mentioned user.
func (s *ThoughtService) CreateThought(ctx context.Context, in CreateThoughtInput) (*models.Thought, error) {
	content, verr := validation.RequireText("Content", in.Content, validation.MaxThoughtLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	thought := &models.Thought{UserID: author.ID, Content: content}
	if err := s.thoughtRepo.Create(ctx, thought, in.Tags); err != nil {
		return nil, err
	}
	thought.User = author

	mentions := validation.ExtractMentions(content)
	if s.notifier == nil || len(mentions) == 0 {
		return thought, nil
	}
	users, err := s.userRepo.FindByUsernames(ctx, mentions)
	if err != nil {
		return thought, nil
	}
	recipients := make([]uint, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, u.ID)
	}
	s.notifier.Notify(ctx, NotifyInput{
		ActorID:    author.ID,
		Recipients: recipients,
		Type:       models.NotificationMention,
		Title:      "You were mentioned",
		Content:    fmt.Sprintf("%s mentioned you in a thought", author.Username),
		Link:       fmt.Sprintf("/users/%s/", author.Username),
	})
	return thought, nil
}

// ToggleLike flips the user's like on a thought.
func (s *ThoughtService) ToggleLike(ctx context.Context, userID, thoughtID uint) (*LikeResult, error) {
	if _, err := s.thoughtRepo.GetByID(ctx, thoughtID); err != nil {
		return nil, err
	}
	liked, count, err := s.thoughtRepo.ToggleLike(ctx, thoughtID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

// ListThoughts returns recent thoughts.
func (s *ThoughtService) ListThoughts(ctx context.Context, limit, offset int) ([]models.Thought, error) {
	return s.thoughtRepo.List(ctx, limit, offset)
}
