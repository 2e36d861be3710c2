package models

import "strings"

// Weights of the profile completeness checklist. They sum to 100.
const (
	completenessFirstName = 10
	completenessLastName  = 10
	completenessBio       = 15
	completenessTitle     = 10
	completenessImage     = 15
	completenessLocation  = 10
	completenessLinks     = 10
	completenessSkills    = 10
	completenessInterests = 10
)

// ProfileFields is the subset of a profile the completeness score looks at.
type ProfileFields struct {
	FirstName     string
	LastName      string
	Bio           string
	Title         string
	ProfileImage  string
	Location      string
	Website       string
	LinkedIn      string
	GitHub        string
	SkillCount    int
	InterestCount int
}

// ProfileFieldsOf extracts the scored fields from a user. Skills and
// interests are counted from the loaded associations.
func ProfileFieldsOf(u *User) ProfileFields {
	return ProfileFields{
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Bio:           u.Bio,
		Title:         u.Title,
		ProfileImage:  u.ProfileImage,
		Location:      u.Location,
		Website:       u.Website,
		LinkedIn:      u.LinkedIn,
		GitHub:        u.GitHub,
		SkillCount:    len(u.Skills),
		InterestCount: len(u.Interests),
	}
}

// RecomputeCompleteness scores a profile from 0 to 100.
func RecomputeCompleteness(p ProfileFields) int {
	set := func(s string) bool { return strings.TrimSpace(s) != "" }

	score := 0
	if set(p.FirstName) {
		score += completenessFirstName
	}
	if set(p.LastName) {
		score += completenessLastName
	}
	if set(p.Bio) {
		score += completenessBio
	}
	if set(p.Title) {
		score += completenessTitle
	}
	if set(p.ProfileImage) {
		score += completenessImage
	}
	if set(p.Location) {
		score += completenessLocation
	}
	if set(p.Website) || set(p.LinkedIn) || set(p.GitHub) {
		score += completenessLinks
	}
	if p.SkillCount > 0 {
		score += completenessSkills
	}
	if p.InterestCount > 0 {
		score += completenessInterests
	}
	return score
}
