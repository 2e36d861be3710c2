package models

import "time"

// ProjectType distinguishes projects, raw ideas, and ventures.
type ProjectType string

const (
	ProjectTypeProject ProjectType = "project"
	ProjectTypeIdea    ProjectType = "idea"
	ProjectTypeVenture ProjectType = "venture"
)

// Valid reports whether t is a known project type.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeProject, ProjectTypeIdea, ProjectTypeVenture:
		return true
	}
	return false
}

// ProjectStage is how far along a project is.
type ProjectStage string

const (
	ProjectStageIdea      ProjectStage = "idea"
	ProjectStagePrototype ProjectStage = "prototype"
	ProjectStageMVP       ProjectStage = "mvp"
	ProjectStageGrowth    ProjectStage = "growth"
	ProjectStageMature    ProjectStage = "mature"
)

// ProjectStages lists stages in lifecycle order.
var ProjectStages = []ProjectStage{
	ProjectStageIdea,
	ProjectStagePrototype,
	ProjectStageMVP,
	ProjectStageGrowth,
	ProjectStageMature,
}

// Valid reports whether s is a known stage.
func (s ProjectStage) Valid() bool {
	for _, stage := range ProjectStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ProjectStatus is whether a project accepts collaborators.
type ProjectStatus string

const (
	ProjectStatusOpen   ProjectStatus = "open"
	ProjectStatusClosed ProjectStatus = "closed"
	ProjectStatusPaused ProjectStatus = "paused"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusOpen, ProjectStatusClosed, ProjectStatusPaused:
		return true
	}
	return false
}

// CollaborationType is the kind of help a project is looking for.
type CollaborationType string

const (
	CollaborationNone         CollaborationType = ""
	CollaborationCoFounders   CollaborationType = "co-founders"
	CollaborationMentors      CollaborationType = "mentors"
	CollaborationInvestors    CollaborationType = "investors"
	CollaborationContributors CollaborationType = "contributors"
)

// Valid reports whether c is a known collaboration type. The empty value is allowed.
func (c CollaborationType) Valid() bool {
	switch c {
	case CollaborationNone, CollaborationCoFounders, CollaborationMentors,
		CollaborationInvestors, CollaborationContributors:
		return true
	}
	return false
}

// Project is a project, idea, or venture published by its creator.
type Project struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	Title               string            `gorm:"size:300;not null" json:"title"`
	Slug                string            `gorm:"size:300;uniqueIndex;not null" json:"slug"`
	Description         string            `gorm:"type:text;not null" json:"description"`
	ShortDescription    string            `gorm:"size:500" json:"short_description"`
	ProjectType         ProjectType       `gorm:"type:varchar(20);not null;default:'project'" json:"project_type"`
	CreatorID           uint              `gorm:"not null;index" json:"creator_id"`
	Creator             *User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Stage               ProjectStage      `gorm:"type:varchar(20);not null;default:'idea';index" json:"stage"`
	Status              ProjectStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CollaborationNeeded CollaborationType `gorm:"type:varchar(20)" json:"collaboration_needed"`
	CoverImage          string            `gorm:"size:500" json:"cover_image"`
	Tags                []Tag             `gorm:"many2many:project_tags;" json:"tags,omitempty"`
	Supporters          []User            `gorm:"many2many:project_supporters;" json:"-"`
	ViewsCount          int               `gorm:"not null;default:0" json:"views_count"`
	IsFeatured          bool              `gorm:"not null;default:false" json:"is_featured"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// ProjectSupporter is the join row behind Project.Supporters.
type ProjectSupporter struct {
	ProjectID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
}

// TableName pins the join table name shared with the many2many tag.
func (ProjectSupporter) TableName() string {
	return "project_supporters"
}

// ProjectUpdate is a progress post written by a project lead.
type ProjectUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title     string    `gorm:"size:300;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
