package validation

import (
	"strings"

	"workstation/internal/models"
)

var desiredRoles = map[string]models.MembershipRole{
	"co-founder":  models.MembershipRoleCoFounder,
	"cofounder":   models.MembershipRoleCoFounder,
	"co founder":  models.MembershipRoleCoFounder,
	"contributor": models.MembershipRoleContributor,
	"mentor":      models.MembershipRoleMentor,
	"investor":    models.MembershipRoleInvestor,
	"member":      models.MembershipRoleMember,
}

// MapDesiredRole maps a requester's free-text role to a grantable role.
// Unknown text, including "creator", maps to member.
func MapDesiredRole(desired string) models.MembershipRole {
	if role, ok := desiredRoles[strings.ToLower(strings.TrimSpace(desired))]; ok {
		return role
	}
	return models.MembershipRoleMember
}

// ParseGrantableRole validates a role chosen by a project manager.
func ParseGrantableRole(role string) (models.MembershipRole, bool) {
	r := models.MembershipRole(strings.ToLower(strings.TrimSpace(role)))
	if r == "" {
		return models.MembershipRoleMember, true
	}
	if !r.Valid() || r == models.MembershipRoleCreator {
		return "", false
	}
	return r, true
}
