package models

import "time"

// NotificationType categorizes a notification.
type NotificationType string

const (
	NotificationMessage       NotificationType = "message"
	NotificationProjectInvite NotificationType = "project_invite"
	NotificationSupport       NotificationType = "support"
	NotificationJoinRequest   NotificationType = "join_request"
	NotificationMention       NotificationType = "mention"
	NotificationComment       NotificationType = "comment"
)

// Notification is a per-user record produced by fan-out. Only its owner reads it.
type Notification struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	UserID           uint             `gorm:"not null;index:idx_notification_user_read" json:"user_id"`
	NotificationType NotificationType `gorm:"type:varchar(20);not null" json:"notification_type"`
	Title            string           `gorm:"size:200;not null" json:"title"`
	Content          string           `gorm:"type:text" json:"content"`
	Link             string           `gorm:"size:500" json:"link"`
	IsRead           bool             `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
}
