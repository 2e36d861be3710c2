package server

import "github.com/gofiber/fiber/v2"

// ListAIWorkers handles GET /api/ai/workers
func (s *Server) ListAIWorkers(c *fiber.Ctx) error {
	workers, err := s.aiService.ListWorkers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workers)
}

// ListAITools handles GET /api/ai/tools
func (s *Server) ListAITools(c *fiber.Ctx) error {
	tools, err := s.aiService.ListTools(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tools)
}

// ListAIConversations handles GET /api/ai/conversations
func (s *Server) ListAIConversations(c *fiber.Ctx) error {
	convs, err := s.aiService.ListConversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(convs)
}

// StartAIConversation handles POST /api/ai/conversations
func (s *Server) StartAIConversation(c *fiber.Ctx) error {
	var req struct {
		WorkerType string `json:"worker_type"`
		Title      string `json:"title"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	conv, err := s.aiService.StartConversation(c.UserContext(), currentUserID(c), req.WorkerType, req.Title)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// GetAIConversation handles GET /api/ai/conversations/:id
func (s *Server) GetAIConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.aiService.GetConversation(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// DeleteAIConversation handles DELETE /api/ai/conversations/:id
func (s *Server) DeleteAIConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.aiService.DeleteConversation(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SendAIMessage handles POST /api/ai/conversations/:id/messages. The
// response holds the stored user message followed by the worker's reply.
func (s *Server) SendAIMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msgs, err := s.aiService.SendAIMessage(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msgs)
}
