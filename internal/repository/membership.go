package repository

import (
	"context"
	"errors"
	"time"

	"workstation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository persists project memberships and join requests.
type MembershipRepository interface {
	GetMembership(ctx context.Context, projectID, userID uint) (*models.ProjectMembership, error)
	AddMember(ctx context.Context, membership *models.ProjectMembership) (bool, error)
	MemberIDs(ctx context.Context, projectID uint) ([]uint, error)
	ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMembership, error)
	CountMembers(ctx context.Context, projectID uint) (int64, error)

	CreateJoinRequest(ctx context.Context, req *models.JoinRequest) (bool, error)
	GetJoinRequest(ctx context.Context, id uint) (*models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, req *models.JoinRequest, status models.JoinRequestStatus, role models.MembershipRole) (memberAdded bool, err error)
	ListJoinRequests(ctx context.Context, projectID uint, status models.JoinRequestStatus) ([]models.JoinRequest, error)
	ListJoinRequestsByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error)
	HasRequested(ctx context.Context, projectID, userID uint) (bool, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository returns a new MembershipRepository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// GetMembership returns the active membership, or nil when the user is not a member.
func (r *membershipRepository) GetMembership(ctx context.Context, projectID, userID uint) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

// upsertMembership inserts membership for the (user, project) pair. An
// inactive row for the pair is reactivated with the new role; an active one
// is left untouched. It reports whether an active membership came into being.
func upsertMembership(tx *gorm.DB, membership *models.ProjectMembership) (bool, error) {
	membership.IsActive = true
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "is_active"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "project_memberships", Name: "is_active"}, Value: false},
		}},
	}).Create(membership)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddMember inserts the membership unless an active one already exists for
// the pair. It reports whether a membership was created or reactivated.
func (r *membershipRepository) AddMember(ctx context.Context, membership *models.ProjectMembership) (bool, error) {
	added, err := upsertMembership(r.db.WithContext(ctx), membership)
	if err != nil {
		return false, translate(err, "ProjectMembership", membership.ProjectID)
	}
	return added, nil
}

func (r *membershipRepository) MemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).Model(&models.ProjectMembership{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *membershipRepository) ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMembership, error) {
	var members []models.ProjectMembership
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *membershipRepository) CountMembers(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.ProjectMembership{}).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// CreateJoinRequest inserts req unless the (user, project) pair already has a
// request. When nothing was inserted req is overwritten with the existing row
// and created is false.
func (r *membershipRepository) CreateJoinRequest(ctx context.Context, req *models.JoinRequest) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(req)
	if res.Error != nil {
		return false, translate(res.Error, "JoinRequest", req.ProjectID)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var existing models.JoinRequest
	if err := db.Where("user_id = ? AND project_id = ?", req.UserID, req.ProjectID).First(&existing).Error; err != nil {
		return false, translate(err, "JoinRequest", req.ProjectID)
	}
	*req = existing
	return false, nil
}

func (r *membershipRepository) GetJoinRequest(ctx context.Context, id uint) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		First(&req, id).Error
	if err != nil {
		return nil, translate(err, "JoinRequest", id)
	}
	return &req, nil
}

// ResolveJoinRequest moves a pending request to status. The update only
// matches pending rows, so a request already resolved by a concurrent caller
// yields an InvalidStateError. Accepting inserts the membership in the same
// transaction; memberAdded is false when the requester was already an
// active member.
func (r *membershipRepository) ResolveJoinRequest(ctx context.Context, req *models.JoinRequest, status models.JoinRequestStatus, role models.MembershipRole) (memberAdded bool, err error) {
	now := time.Now().UTC()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JoinRequest{}).
			Where("id = ? AND status = ?", req.ID, models.JoinRequestStatusPending).
			Updates(map[string]interface{}{"status": status, "responded_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewInvalidStateError("Join request has already been answered")
		}

		if status != models.JoinRequestStatusAccepted {
			return nil
		}
		membership := models.ProjectMembership{
			UserID:    req.UserID,
			ProjectID: req.ProjectID,
			Role:      role,
		}
		added, err := upsertMembership(tx, &membership)
		memberAdded = added
		return err
	})
	if err != nil {
		return false, translate(err, "JoinRequest", req.ID)
	}
	req.Status = status
	req.RespondedAt = &now
	return memberAdded, nil
}

// ListJoinRequests returns a project's requests, newest first. An empty status lists all.
func (r *membershipRepository) ListJoinRequests(ctx context.Context, projectID uint, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	q := readDB(r.db).WithContext(ctx).Preload("User").Where("project_id = ?", projectID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *membershipRepository) ListJoinRequestsByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	var reqs []models.JoinRequest
	err := readDB(r.db).WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *membershipRepository) HasRequested(ctx context.Context, projectID, userID uint) (bool, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.JoinRequest{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
