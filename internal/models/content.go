package models

import "time"

// Comment is authored on a project. Replies point at a top-level comment.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID       uint      `gorm:"not null;index" json:"project_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id"`
	Replies         []Comment `gorm:"foreignKey:ParentCommentID" json:"replies,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Thought is a short standalone post.
type Thought struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content    string    `gorm:"size:1000;not null" json:"content"`
	Tags       []Tag     `gorm:"many2many:thought_tags;" json:"tags,omitempty"`
	Likes      []User    `gorm:"many2many:thought_likes;" json:"-"`
	LikesCount int64     `gorm:"-" json:"likes_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ThoughtLike is the join row behind Thought.Likes.
type ThoughtLike struct {
	ThoughtID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
}

// TableName pins the join table name shared with the many2many tag.
func (ThoughtLike) TableName() string {
	return "thought_likes"
}
