package repository

import (
	"context"
	"errors"

	"workstation/internal/cache"
	"workstation/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User, skills, interests []string) error
	SaveProfile(ctx context.Context, user *models.User, skills, interests *[]string) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) (map[models.UserType]int64, error)
	SetAdmin(ctx context.Context, id uint, isAdmin bool) error
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return translate(readDB(r.db).WithContext(ctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfile loads the user with skills and interests, bypassing the cache.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := readDB(r.db).WithContext(ctx).
		Preload("Skills").
		Preload("Interests").
		First(&user, id).Error
	if err != nil {
		return nil, translate(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "User", username)
	}
	return &user, nil
}

// FindByUsernames returns the users that exist among usernames. Unknown names are skipped.
func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts the user with its skills and interests and stores the
// computed completeness score.
func (r *userRepository) Create(ctx context.Context, user *models.User, skills, interests []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user.Skills, err = resolveSkills(tx, skills); err != nil {
			return err
		}
		if user.Interests, err = resolveTags(tx, interests); err != nil {
			return err
		}
		user.ProfileCompleteness = models.RecomputeCompleteness(models.ProfileFieldsOf(user))
		return tx.Create(user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// SaveProfile persists scalar profile fields, replaces skills and interests
// when they are non-nil, and writes the recomputed completeness in the same
// transaction.
func (r *userRepository) SaveProfile(ctx context.Context, user *models.User, skills, interests *[]string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if skills != nil {
			resolved, err := resolveSkills(tx, *skills)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Skills").Replace(resolved); err != nil {
				return err
			}
			user.Skills = resolved
		} else if err := tx.Model(user).Association("Skills").Find(&user.Skills); err != nil {
			return err
		}

		if interests != nil {
			resolved, err := resolveTags(tx, *interests)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Interests").Replace(resolved); err != nil {
				return err
			}
			user.Interests = resolved
		} else if err := tx.Model(user).Association("Interests").Find(&user.Interests); err != nil {
			return err
		}

		user.ProfileCompleteness = models.RecomputeCompleteness(models.ProfileFieldsOf(user))
		return tx.Model(user).
			Select("FirstName", "LastName", "UserType", "Bio", "Title", "ProfileImage",
				"Location", "Website", "LinkedIn", "GitHub", "ProfileCompleteness").
			Updates(user).Error
	})
	if err != nil {
		return translate(err, "User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Order("id ASC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *userRepository) CountByType(ctx context.Context) (map[models.UserType]int64, error) {
	var rows []struct {
		UserType models.UserType
		Count    int64
	}
	err := readDB(r.db).WithContext(ctx).Model(&models.User{}).
		Select("user_type, COUNT(*) AS count").
		Group("user_type").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.UserType]int64, len(rows))
	for _, row := range rows {
		out[row.UserType] = row.Count
	}
	return out, nil
}

// SetAdmin flips the admin bit and drops the cached user.
func (r *userRepository) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).Where("is_admin = ?", true).Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
