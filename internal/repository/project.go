package repository

import (
	"context"

	"workstation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository defines persistence operations for projects and their
// engagement rows.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project, tags []string) error
	Update(ctx context.Context, project *models.Project, tags *[]string) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	IncrementViews(ctx context.Context, id uint) (int, error)
	ToggleSupport(ctx context.Context, projectID, userID uint) (bool, int64, error)
	IsSupporter(ctx context.Context, projectID, userID uint) (bool, error)
	SupporterCount(ctx context.Context, projectID uint) (int64, error)
	SupporterIDs(ctx context.Context, projectID uint) ([]uint, error)
	List(ctx context.Context, limit, offset int) ([]models.Project, error)
	ListByCreator(ctx context.Context, userID uint, limit int) ([]models.Project, error)
	ListJoinedBy(ctx context.Context, userID uint, limit int) ([]models.Project, error)
	ListSupportedBy(ctx context.Context, userID uint, limit int) ([]models.Project, error)
	CreateUpdate(ctx context.Context, update *models.ProjectUpdate) error
	ListUpdates(ctx context.Context, projectID uint, limit int) ([]models.ProjectUpdate, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.ProjectStatus) (int64, error)
	CountByStage(ctx context.Context) (map[models.ProjectStage]int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts the project, its tags, and the creator membership in one transaction.
func (r *projectRepository) Create(ctx context.Context, project *models.Project, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveTags(tx, tags)
		if err != nil {
			return err
		}
		project.Tags = resolved
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		membership := models.ProjectMembership{
			UserID:    project.CreatorID,
			ProjectID: project.ID,
			Role:      models.MembershipRoleCreator,
			IsActive:  true,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error
	})
	return translate(err, "Project", project.Slug)
}

// Update saves the mutable project columns. Tags are replaced when non-nil.
func (r *projectRepository) Update(ctx context.Context, project *models.Project, tags *[]string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tags != nil {
			resolved, err := resolveTags(tx, *tags)
			if err != nil {
				return err
			}
			if err := tx.Model(project).Association("Tags").Replace(resolved); err != nil {
				return err
			}
			project.Tags = resolved
		}
		return tx.Model(project).
			Select("Title", "Slug", "Description", "ShortDescription", "ProjectType", "Stage",
				"Status", "CollaborationNeeded", "CoverImage").
			Updates(project).Error
	})
	return translate(err, "Project", project.ID)
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := readDB(r.db).WithContext(ctx).
		Preload("Creator").
		Preload("Tags").
		First(&project, id).Error
	if err != nil {
		return nil, translate(err, "Project", id)
	}
	return &project, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := readDB(r.db).WithContext(ctx).
		Preload("Creator").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&project).Error
	if err != nil {
		return nil, translate(err, "Project", slug)
	}
	return &project, nil
}

// SlugTaken reports whether slug belongs to a project other than excludeID.
// Reads go to the primary so a just-created slug is visible.
func (r *projectRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// IncrementViews bumps views_count in SQL and returns the new value.
func (r *projectRepository) IncrementViews(ctx context.Context, id uint) (int, error) {
	var views int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("id = ?", id).
			UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Project{}).Where("id = ?", id).Pluck("views_count", &views).Error
	})
	if err != nil {
		return 0, translate(err, "Project", id)
	}
	return views, nil
}

// ToggleSupport removes the supporter row if present, otherwise inserts it.
// The returned count is read inside the same transaction.
func (r *projectRepository) ToggleSupport(ctx context.Context, projectID, userID uint) (bool, int64, error) {
	var (
		supported bool
		count     int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.ProjectSupporter{ProjectID: projectID, UserID: userID}
		res := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectSupporter{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
			supported = true
		}
		return tx.Model(&models.ProjectSupporter{}).Where("project_id = ?", projectID).Count(&count).Error
	})
	if err != nil {
		return false, 0, translate(err, "Project", projectID)
	}
	return supported, count, nil
}

func (r *projectRepository) IsSupporter(ctx context.Context, projectID, userID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.ProjectSupporter{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *projectRepository) SupporterCount(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.ProjectSupporter{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *projectRepository) SupporterIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.ProjectSupporter{}).
		Where("project_id = ?", projectID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *projectRepository) List(ctx context.Context, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := readDB(r.db).WithContext(ctx).
		Preload("Creator").
		Preload("Tags").
		Order("is_featured DESC, created_at DESC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) ListByCreator(ctx context.Context, userID uint, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := readDB(r.db).WithContext(ctx).
		Where("creator_id = ?", userID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

// ListJoinedBy returns projects where the user holds an active non-creator membership.
func (r *projectRepository) ListJoinedBy(ctx context.Context, userID uint, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN project_memberships pm ON pm.project_id = projects.id").
		Where("pm.user_id = ? AND pm.is_active = ? AND pm.role <> ?", userID, true, models.MembershipRoleCreator).
		Order("pm.joined_at DESC").
		Limit(clampLimit(limit)).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) ListSupportedBy(ctx context.Context, userID uint, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN project_supporters ps ON ps.project_id = projects.id").
		Where("ps.user_id = ?", userID).
		Order("projects.created_at DESC").
		Limit(clampLimit(limit)).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) CreateUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	return translate(r.db.WithContext(ctx).Create(update).Error, "ProjectUpdate", update.ProjectID)
}

func (r *projectRepository) ListUpdates(ctx context.Context, projectID uint, limit int) ([]models.ProjectUpdate, error) {
	var updates []models.ProjectUpdate
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&updates).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updates, nil
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Project{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *projectRepository) CountByStatus(ctx context.Context, status models.ProjectStatus) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Project{}).Where("status = ?", status).Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *projectRepository) CountByStage(ctx context.Context) (map[models.ProjectStage]int64, error) {
	var rows []struct {
		Stage models.ProjectStage
		Count int64
	}
	err := readDB(r.db).WithContext(ctx).Model(&models.Project{}).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.ProjectStage]int64, len(models.ProjectStages))
	for _, stage := range models.ProjectStages {
		out[stage] = 0
	}
	for _, row := range rows {
		out[row.Stage] = row.Count
	}
	return out, nil
}
