package models

import "time"

// MembershipRole defines a member's role in a project.
type MembershipRole string

const (
	// MembershipRoleCreator is held by the project creator only.
	MembershipRoleCreator MembershipRole = "creator"
	// MembershipRoleCoFounder can manage join requests and post updates.
	MembershipRoleCoFounder MembershipRole = "co-founder"
	// MembershipRoleMember is the default role.
	MembershipRoleMember MembershipRole = "member"
	// MembershipRoleContributor contributes work.
	MembershipRoleContributor MembershipRole = "contributor"
	// MembershipRoleMentor advises the team.
	MembershipRoleMentor MembershipRole = "mentor"
	// MembershipRoleInvestor backs the project.
	MembershipRoleInvestor MembershipRole = "investor"
)

// Valid reports whether r is in the closed role set.
func (r MembershipRole) Valid() bool {
	switch r {
	case MembershipRoleCreator, MembershipRoleCoFounder, MembershipRoleMember,
		MembershipRoleContributor, MembershipRoleMentor, MembershipRoleInvestor:
		return true
	}
	return false
}

// CanManage reports whether the role may respond to join requests and post updates.
func (r MembershipRole) CanManage() bool {
	return r == MembershipRoleCreator || r == MembershipRoleCoFounder
}

// ProjectMembership maps users to projects and tracks role.
type ProjectMembership struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_membership_user_project" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID uint           `gorm:"not null;uniqueIndex:idx_membership_user_project;index" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Role      MembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	JoinedAt  time.Time      `gorm:"autoCreateTime" json:"joined_at"`
}

// JoinRequestStatus defines lifecycle states for join requests.
type JoinRequestStatus string

const (
	// JoinRequestStatusPending indicates the request is awaiting a decision.
	JoinRequestStatusPending JoinRequestStatus = "pending"
	// JoinRequestStatusAccepted is terminal; a membership exists.
	JoinRequestStatusAccepted JoinRequestStatus = "accepted"
	// JoinRequestStatusRejected is terminal.
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user's ask to become a member of a project.
type JoinRequest struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_join_request_user_project" json:"user_id"`
	User        *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID   uint              `gorm:"not null;uniqueIndex:idx_join_request_user_project;index" json:"project_id"`
	Project     *Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	DesiredRole string            `gorm:"size:100" json:"desired_role"`
	Status      JoinRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	RespondedAt *time.Time        `json:"responded_at"`
}

// JoinDecision is the creator's answer to a join request.
type JoinDecision string

const (
	JoinDecisionAccept JoinDecision = "accept"
	JoinDecisionReject JoinDecision = "reject"
)
