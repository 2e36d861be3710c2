package server

import (
	"workstation/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListConversations handles GET /api/conversations
func (s *Server) ListConversations(c *fiber.Ctx) error {
	convs, err := s.messagingService.ListConversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(convs)
}

// StartConversation handles POST /api/conversations. It returns the
// existing conversation when the pair already has one.
func (s *Server) StartConversation(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	conv, err := s.messagingService.GetOrCreateConversation(c.UserContext(), currentUserID(c), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// OpenConversation handles GET /api/conversations/:id and marks it read.
func (s *Server) OpenConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.messagingService.OpenConversation(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteConversation handles DELETE /api/conversations/:id
func (s *Server) DeleteConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messagingService.DeleteConversation(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		RecipientID     uint   `json:"recipient_id"`
		Subject         string `json:"subject"`
		Content         string `json:"content"`
		ParentMessageID *uint  `json:"parent_message_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messagingService.SendMessage(c.UserContext(), service.SendMessageInput{
		SenderID:        currentUserID(c),
		RecipientID:     req.RecipientID,
		Subject:         req.Subject,
		Content:         req.Content,
		ParentMessageID: req.ParentMessageID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Inbox handles GET /api/messages/inbox
func (s *Server) Inbox(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	msgs, err := s.messagingService.Inbox(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// SentMessages handles GET /api/messages/sent
func (s *Server) SentMessages(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	msgs, err := s.messagingService.Sent(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// MarkMessageRead handles POST /api/messages/:id/read
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messagingService.MarkMessageRead(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
