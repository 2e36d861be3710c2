package models

import "time"

// Conversation groups every message between exactly two users. The pair is
// stored normalized so that (low, high) is unique regardless of who wrote first.
type Conversation struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ParticipantLowID  uint      `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"participant_low_id"`
	ParticipantLow    *User     `gorm:"foreignKey:ParticipantLowID" json:"participant_low,omitempty"`
	ParticipantHighID uint      `gorm:"not null;uniqueIndex:idx_conversation_pair;index" json:"participant_high_id"`
	ParticipantHigh   *User     `gorm:"foreignKey:ParticipantHighID" json:"participant_high,omitempty"`
	ProjectID         *uint     `gorm:"index" json:"project_id"`
	LastMessageID     *uint     `json:"last_message_id"`
	LastMessage       *Message  `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
	UnreadCount       int       `gorm:"-" json:"unread_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`
}

// ConversationPair orders two user ids into the stored (low, high) key.
func ConversationPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantLowID == userID || c.ParticipantHighID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantLowID == userID {
		return c.ParticipantHighID
	}
	return c.ParticipantLowID
}

// Message is a direct message from sender to recipient.
type Message struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ConversationID  uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID        uint       `gorm:"not null;index" json:"sender_id"`
	Sender          *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID     uint       `gorm:"not null;index:idx_message_recipient_read" json:"recipient_id"`
	Recipient       *User      `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Subject         string     `gorm:"size:300" json:"subject"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	IsRead          bool       `gorm:"not null;default:false;index:idx_message_recipient_read" json:"is_read"`
	ReadAt          *time.Time `json:"read_at"`
	ParentMessageID *uint      `gorm:"index" json:"parent_message_id"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}
