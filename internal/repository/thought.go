package repository

import (
	"context"

	"workstation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThoughtRepository persists thoughts and their likes.
type ThoughtRepository interface {
	Create(ctx context.Context, thought *models.Thought, tags []string) error
	GetByID(ctx context.Context, id uint) (*models.Thought, error)
	List(ctx context.Context, limit, offset int) ([]models.Thought, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Thought, error)
	ToggleLike(ctx context.Context, thoughtID, userID uint) (bool, int64, error)
	Count(ctx context.Context) (int64, error)
}

type thoughtRepository struct {
	db *gorm.DB
}

// NewThoughtRepository returns a new ThoughtRepository implementation.
func NewThoughtRepository(db *gorm.DB) ThoughtRepository {
	return &thoughtRepository{db: db}
}

func (r *thoughtRepository) Create(ctx context.Context, thought *models.Thought, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveTags(tx, tags)
		if err != nil {
			return err
		}
		thought.Tags = resolved
		return tx.Create(thought).Error
	})
	return translate(err, "Thought", 0)
}

func (r *thoughtRepository) GetByID(ctx context.Context, id uint) (*models.Thought, error) {
	var thought models.Thought
	err := r.db.WithContext(ctx).Preload("User").Preload("Tags").First(&thought, id).Error
	if err != nil {
		return nil, translate(err, "Thought", id)
	}
	if err := r.fillLikes(ctx, []*models.Thought{&thought}); err != nil {
		return nil, err
	}
	return &thought, nil
}

func (r *thoughtRepository) List(ctx context.Context, limit, offset int) ([]models.Thought, error) {
	var thoughts []models.Thought
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&thoughts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return thoughts, r.fillLikesSlice(ctx, thoughts)
}

func (r *thoughtRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Thought, error) {
	var thoughts []models.Thought
	err := readDB(r.db).WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Find(&thoughts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return thoughts, r.fillLikesSlice(ctx, thoughts)
}

// ToggleLike removes the like if present, otherwise adds it, and returns the
// count read in the same transaction.
func (r *thoughtRepository) ToggleLike(ctx context.Context, thoughtID, userID uint) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("thought_id = ? AND user_id = ?", thoughtID, userID).Delete(&models.ThoughtLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := models.ThoughtLike{ThoughtID: thoughtID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&models.ThoughtLike{}).Where("thought_id = ?", thoughtID).Count(&count).Error
	})
	if err != nil {
		return false, 0, translate(err, "Thought", thoughtID)
	}
	return liked, count, nil
}

func (r *thoughtRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Thought{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *thoughtRepository) fillLikesSlice(ctx context.Context, thoughts []models.Thought) error {
	ptrs := make([]*models.Thought, len(thoughts))
	for i := range thoughts {
		ptrs[i] = &thoughts[i]
	}
	return r.fillLikes(ctx, ptrs)
}

func (r *thoughtRepository) fillLikes(ctx context.Context, thoughts []*models.Thought) error {
	if len(thoughts) == 0 {
		return nil
	}
	ids := make([]uint, len(thoughts))
	for i, t := range thoughts {
		ids[i] = t.ID
	}

	var rows []struct {
		ThoughtID uint
		Count     int64
	}
	err := readDB(r.db).WithContext(ctx).Model(&models.ThoughtLike{}).
		Select("thought_id, COUNT(*) AS count").
		Where("thought_id IN ?", ids).
		Group("thought_id").
		Scan(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ThoughtID] = row.Count
	}
	for _, t := range thoughts {
		t.LikesCount = counts[t.ID]
	}
	return nil
}
