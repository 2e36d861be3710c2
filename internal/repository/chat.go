package repository

import (
	"context"
	"time"

	"workstation/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for direct message data operations.
type ChatRepository interface {
	GetOrCreateConversation(ctx context.Context, a, b uint, projectID *uint) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	ListUserConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	DeleteConversation(ctx context.Context, conv *models.Conversation) error

	CreateMessage(ctx context.Context, msg *models.Message) (*models.Conversation, error)
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	GetMessages(ctx context.Context, convID uint) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, convID, userID uint) (int64, error)
	MarkMessageRead(ctx context.Context, msgID, userID uint) (bool, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Inbox(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error)
	Sent(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// conversationFor inserts the normalized pair if missing and selects it.
// Concurrent callers converge on the same row through the unique pair index.
func conversationFor(tx *gorm.DB, a, b uint, projectID *uint) (*models.Conversation, error) {
	low, high := models.ConversationPair(a, b)
	conv := models.Conversation{ParticipantLowID: low, ParticipantHighID: high, ProjectID: projectID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&conv).Error; err != nil {
		return nil, err
	}

	var existing models.Conversation
	err := tx.Where("participant_low_id = ? AND participant_high_id = ?", low, high).First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *chatRepository) GetOrCreateConversation(ctx context.Context, a, b uint, projectID *uint) (*models.Conversation, error) {
	conv, err := conversationFor(r.db.WithContext(ctx), a, b, projectID)
	if err != nil {
		return nil, translate(err, "Conversation", 0)
	}
	return conv, nil
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("ParticipantLow").
		Preload("ParticipantHigh").
		Preload("LastMessage").
		First(&conv, id).Error
	if err != nil {
		return nil, translate(err, "Conversation", id)
	}
	return &conv, nil
}

// ListUserConversations returns the user's conversations, most recently
// active first, with UnreadCount set from messages addressed to the user.
func (r *chatRepository) ListUserConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	db := readDB(r.db).WithContext(ctx)

	var convs []models.Conversation
	err := db.
		Preload("ParticipantLow").
		Preload("ParticipantHigh").
		Preload("LastMessage").
		Where("participant_low_id = ? OR participant_high_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(convs) == 0 {
		return convs, nil
	}

	var counts []struct {
		ConversationID uint
		Count          int
	}
	err = db.Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("conversation_id").
		Scan(&counts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	byConv := make(map[uint]int, len(counts))
	for _, c := range counts {
		byConv[c.ConversationID] = c.Count
	}
	for i := range convs {
		convs[i].UnreadCount = byConv[convs[i].ID]
	}
	return convs, nil
}

// DeleteConversation hard-deletes the conversation and every message in it.
func (r *chatRepository) DeleteConversation(ctx context.Context, conv *models.Conversation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			UpdateColumn("last_message_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, conv.ID).Error
	})
	return translate(err, "Conversation", conv.ID)
}

// CreateMessage resolves the sender/recipient conversation, inserts msg, and
// bumps the conversation's last message in one transaction.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.Conversation, error) {
	var conv *models.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		conv, err = conversationFor(tx, msg.SenderID, msg.RecipientID, nil)
		if err != nil {
			return err
		}

		msg.ConversationID = conv.ID
		msg.IsRead = false
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			UpdateColumns(map[string]interface{}{"last_message_id": msg.ID, "updated_at": now}).Error; err != nil {
			return err
		}
		conv.LastMessageID = &msg.ID
		conv.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, translate(err, "Message", 0)
	}
	return conv, nil
}

func (r *chatRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, translate(err, "Message", id)
	}
	return &msg, nil
}

func (r *chatRepository) GetMessages(ctx context.Context, convID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", convID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// MarkConversationRead flags every unread message to userID in the
// conversation as read and returns how many changed.
func (r *chatRepository) MarkConversationRead(ctx context.Context, convID, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", convID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// MarkMessageRead marks one message read if userID is its recipient and it is still unread.
func (r *chatRepository) MarkMessageRead(ctx context.Context, msgID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", msgID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *chatRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *chatRepository) Inbox(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return r.listMessages(ctx, "recipient_id = ?", "Sender", userID, limit, offset)
}

func (r *chatRepository) Sent(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return r.listMessages(ctx, "sender_id = ?", "Recipient", userID, limit, offset)
}

func (r *chatRepository) listMessages(ctx context.Context, where, preload string, userID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := readDB(r.db).WithContext(ctx).
		Preload(preload).
		Where(where, userID).
		Order("created_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}
