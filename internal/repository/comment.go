package repository

import (
	"context"

	"workstation/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Comment, error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error, "Comment", comment.ProjectID)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &comment, nil
}

// ListByProject returns top-level comments, newest first, each with its
// replies oldest first.
func (r *commentRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Replies.User").
		Where("project_id = ? AND parent_comment_id IS NULL", projectID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).Where("project_id = ?", projectID).Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error, "Comment", id)
}
