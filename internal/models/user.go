// Package models contains data structures for the application's domain models.
package models

import "time"

// UserType classifies a member of the platform.
type UserType string

const (
	// UserTypeFounder is someone building a venture.
	UserTypeFounder UserType = "founder"
	// UserTypeProfessional is a working professional.
	UserTypeProfessional UserType = "professional"
	// UserTypeStudent is a student.
	UserTypeStudent UserType = "student"
	// UserTypeEnthusiast is the default type.
	UserTypeEnthusiast UserType = "enthusiast"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeFounder, UserTypeProfessional, UserTypeStudent, UserTypeEnthusiast:
		return true
	}
	return false
}

// User represents a member of Workstation Hub.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email               string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password            string    `gorm:"not null" json:"-"`
	FirstName           string    `gorm:"size:150" json:"first_name"`
	LastName            string    `gorm:"size:150" json:"last_name"`
	UserType            UserType  `gorm:"type:varchar(20);not null;default:'enthusiast'" json:"user_type"`
	Bio                 string    `gorm:"type:text" json:"bio"`
	Title               string    `gorm:"size:200" json:"title"`
	ProfileImage        string    `gorm:"size:500" json:"profile_image"`
	ProfileCompleteness int       `gorm:"not null;default:0" json:"profile_completeness"`
	Location            string    `gorm:"size:200" json:"location"`
	Website             string    `gorm:"size:200" json:"website"`
	LinkedIn            string    `gorm:"column:linkedin;size:200" json:"linkedin"`
	GitHub              string    `gorm:"column:github;size:200" json:"github"`
	Skills              []Skill   `gorm:"many2many:user_skills;" json:"skills,omitempty"`
	Interests           []Tag     `gorm:"many2many:user_interests;" json:"interests,omitempty"`
	IsAdmin             bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// Skill is something a user can do.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Category  string    `gorm:"size:50" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag categorizes projects, thoughts, and user interests.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
