package models

import "time"

// AIWorker is a simulated assistant persona.
type AIWorker struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	WorkerType  string    `gorm:"size:20;uniqueIndex;not null" json:"worker_type"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// AIConversation is one user's thread with a worker.
type AIConversation struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	WorkerID  uint        `gorm:"not null;index" json:"worker_id"`
	Worker    *AIWorker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Title     string      `gorm:"size:200" json:"title"`
	Messages  []AIMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AIMessageSender is who wrote an AI conversation message.
type AIMessageSender string

const (
	AIMessageSenderUser AIMessageSender = "user"
	AIMessageSenderAI   AIMessageSender = "ai"
)

// AIMessage is a single turn in an AI conversation.
type AIMessage struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ConversationID uint            `gorm:"not null;index" json:"conversation_id"`
	Sender         AIMessageSender `gorm:"type:varchar(10);not null" json:"sender"`
	Content        string          `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AITool is a catalog entry shown next to the workers.
type AITool struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	Category    string    `gorm:"size:50" json:"category"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
