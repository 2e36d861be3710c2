package service

import (
	"context"
	"fmt"
	"log/slog"

	"workstation/internal/cache"
	"workstation/internal/middleware"
	"workstation/internal/models"
	"workstation/internal/notifications"
	"workstation/internal/observability"
	"workstation/internal/repository"
	"workstation/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// MessagingService provides direct message business logic.
type MessagingService struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	notifier  *NotificationService
	publisher EventPublisher
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	SenderID        uint
	RecipientID     uint
	Content         string
	Subject         string
	ParentMessageID *uint
}

// ConversationView is an opened conversation with its messages.
type ConversationView struct {
	Conversation *models.Conversation `json:"conversation"`
	Messages     []models.Message     `json:"messages"`
	MarkedRead   int64                `json:"marked_read"`
}

// NewMessagingService returns a new MessagingService.
func NewMessagingService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
	publisher EventPublisher,
) *MessagingService {
	return &MessagingService{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		publisher: publisher,
	}
}

// GetOrCreateConversation returns the single conversation between a and b.
func (s *MessagingService) GetOrCreateConversation(ctx context.Context, a, b uint) (*models.Conversation, error) {
	if a == b {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}
	exists, err := s.userRepo.Exists(ctx, b)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", b)
	}
	return s.chatRepo.GetOrCreateConversation(ctx, a, b, nil)
}

// SendMessage stores a message and, after commit, notifies the recipient.
func (s *MessagingService) SendMessage(ctx context.Context, in SendMessageInput) (_ *models.Message, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "messaging", "SendMessage",
		attribute.Int64("message.recipient_id", int64(in.RecipientID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.SenderID == in.RecipientID {
		return nil, models.NewValidationError("Cannot send a message to yourself")
	}
	content, verr := validation.RequireText("Message content", in.Content, validation.MaxMessageLength)
	if verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	subject := validation.Truncate(validation.SanitizeText(in.Subject), validation.MaxTitleLength)

	recipient, err := s.userRepo.GetByID(ctx, in.RecipientID)
	if err != nil {
		return nil, err
	}
	sender, err := s.userRepo.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}

	if in.ParentMessageID != nil {
		parent, err := s.chatRepo.GetMessage(ctx, *in.ParentMessageID)
		if err != nil {
			return nil, err
		}
		if !isBetween(parent, in.SenderID, in.RecipientID) {
			return nil, models.NewValidationError("Parent message belongs to another conversation")
		}
	}

	msg := &models.Message{
		SenderID:        in.SenderID,
		RecipientID:     recipient.ID,
		Subject:         subject,
		Content:         content,
		ParentMessageID: in.ParentMessageID,
	}
	if _, err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesSent.Inc()
	cache.InvalidateUnread(ctx, recipient.ID)

	s.publishMessage(ctx, msg)
	if s.notifier != nil {
		s.notifier.Notify(ctx, NotifyInput{
			ActorID:    sender.ID,
			Recipients: []uint{recipient.ID},
			Type:       models.NotificationMessage,
			Title:      "New message",
			Content:    fmt.Sprintf("You have a new message from %s", sender.Username),
			Link:       "/messages/",
		})
	}
	return msg, nil
}

func isBetween(m *models.Message, a, b uint) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

func (s *MessagingService) publishMessage(ctx context.Context, msg *models.Message) {
	if s.publisher == nil {
		return
	}
	ev := notifications.Event{Type: notifications.EventMessage, Payload: msg}
	if err := s.publisher.PublishEvent(ctx, ev, msg.RecipientID, msg.SenderID); err != nil {
		middleware.Logger.WarnContext(ctx, "message publish failed",
			slog.Uint64("message_id", uint64(msg.ID)), slog.String("error", err.Error()))
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(notifications.EventMessage).Inc()
}

// participantConversation loads a conversation userID belongs to.
func (s *MessagingService) participantConversation(ctx context.Context, userID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewForbiddenError("You are not part of this conversation")
	}
	return conv, nil
}

// OpenConversation marks the user's unread messages read and returns the
// conversation with its messages oldest first.
func (s *MessagingService) OpenConversation(ctx context.Context, userID, conversationID uint) (_ *ConversationView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "messaging", "OpenConversation")
	defer func() { observability.EndSpan(span, err) }()

	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	marked, err := s.chatRepo.MarkConversationRead(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		cache.InvalidateUnread(ctx, userID)
	}
	msgs, err := s.chatRepo.GetMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationView{Conversation: conv, Messages: msgs, MarkedRead: marked}, nil
}

// DeleteConversation removes the conversation and all its messages.
func (s *MessagingService) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if err := s.chatRepo.DeleteConversation(ctx, conv); err != nil {
		return err
	}
	cache.InvalidateUnread(ctx, conv.ParticipantLowID, conv.ParticipantHighID)
	return nil
}

// ListConversations returns the user's conversations with unread counts.
func (s *MessagingService) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return s.chatRepo.ListUserConversations(ctx, userID)
}

// UnreadMessageCount returns how many messages to the user are unread.
func (s *MessagingService) UnreadMessageCount(ctx context.Context, userID uint) (int64, error) {
	return s.chatRepo.UnreadCount(ctx, userID)
}

// MarkMessageRead marks a single message read. Only its recipient may do so.
func (s *MessagingService) MarkMessageRead(ctx context.Context, userID, messageID uint) error {
	msg, err := s.chatRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.RecipientID != userID {
		return models.NewForbiddenError("Only the recipient can mark a message read")
	}
	changed, err := s.chatRepo.MarkMessageRead(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if changed {
		cache.InvalidateUnread(ctx, userID)
	}
	return nil
}

// Inbox lists messages received by the user, newest first.
func (s *MessagingService) Inbox(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.chatRepo.Inbox(ctx, userID, limit, offset)
}

// Sent lists messages sent by the user, newest first.
func (s *MessagingService) Sent(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.chatRepo.Sent(ctx, userID, limit, offset)
}
