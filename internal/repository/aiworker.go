package repository

import (
	"context"
	"time"

	"workstation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AIWorkerRepository persists the AI worker catalog and user conversations with it.
type AIWorkerRepository interface {
	UpsertWorkers(ctx context.Context, workers []models.AIWorker) error
	UpsertTools(ctx context.Context, tools []models.AITool) error
	ListWorkers(ctx context.Context) ([]models.AIWorker, error)
	GetWorkerByType(ctx context.Context, workerType string) (*models.AIWorker, error)
	ListTools(ctx context.Context) ([]models.AITool, error)

	CreateConversation(ctx context.Context, conv *models.AIConversation) error
	GetConversation(ctx context.Context, id uint) (*models.AIConversation, error)
	ListConversations(ctx context.Context, userID uint) ([]models.AIConversation, error)
	AppendMessages(ctx context.Context, convID uint, msgs ...*models.AIMessage) error
	CountMessages(ctx context.Context, convID uint) (int64, error)
	DeleteConversation(ctx context.Context, id uint) error
}

type aiWorkerRepository struct {
	db *gorm.DB
}

// NewAIWorkerRepository returns a new AIWorkerRepository implementation.
func NewAIWorkerRepository(db *gorm.DB) AIWorkerRepository {
	return &aiWorkerRepository{db: db}
}

// UpsertWorkers inserts or refreshes workers keyed by worker_type.
func (r *aiWorkerRepository) UpsertWorkers(ctx context.Context, workers []models.AIWorker) error {
	if len(workers) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "worker_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "is_active"}),
	}).Create(&workers).Error
	return translate(err, "AIWorker", len(workers))
}

// UpsertTools inserts or refreshes tools keyed by name.
func (r *aiWorkerRepository) UpsertTools(ctx context.Context, tools []models.AITool) error {
	if len(tools) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "icon", "category", "sort_order", "is_active"}),
	}).Create(&tools).Error
	return translate(err, "AITool", len(tools))
}

func (r *aiWorkerRepository) ListWorkers(ctx context.Context) ([]models.AIWorker, error) {
	var workers []models.AIWorker
	err := readDB(r.db).WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&workers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return workers, nil
}

func (r *aiWorkerRepository) GetWorkerByType(ctx context.Context, workerType string) (*models.AIWorker, error) {
	var worker models.AIWorker
	err := readDB(r.db).WithContext(ctx).
		Where("worker_type = ? AND is_active = ?", workerType, true).
		First(&worker).Error
	if err != nil {
		return nil, translate(err, "AIWorker", workerType)
	}
	return &worker, nil
}

func (r *aiWorkerRepository) ListTools(ctx context.Context) ([]models.AITool, error) {
	var tools []models.AITool
	err := readDB(r.db).WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC, name ASC").Find(&tools).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tools, nil
}

func (r *aiWorkerRepository) CreateConversation(ctx context.Context, conv *models.AIConversation) error {
	return translate(r.db.WithContext(ctx).Create(conv).Error, "AIConversation", 0)
}

func (r *aiWorkerRepository) GetConversation(ctx context.Context, id uint) (*models.AIConversation, error) {
	var conv models.AIConversation
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&conv, id).Error
	if err != nil {
		return nil, translate(err, "AIConversation", id)
	}
	return &conv, nil
}

func (r *aiWorkerRepository) ListConversations(ctx context.Context, userID uint) ([]models.AIConversation, error) {
	var convs []models.AIConversation
	err := readDB(r.db).WithContext(ctx).
		Preload("Worker").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}

// AppendMessages stores msgs in order and touches the conversation's updated_at.
func (r *aiWorkerRepository) AppendMessages(ctx context.Context, convID uint, msgs ...*models.AIMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range msgs {
			m.ConversationID = convID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.AIConversation{}).Where("id = ?", convID).
			UpdateColumn("updated_at", time.Now().UTC()).Error
	})
	return translate(err, "AIConversation", convID)
}

func (r *aiWorkerRepository) CountMessages(ctx context.Context, convID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AIMessage{}).Where("conversation_id = ?", convID).Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *aiWorkerRepository) DeleteConversation(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.AIMessage{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.AIConversation{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("AI conversation", id)
		}
		return nil
	})
}
