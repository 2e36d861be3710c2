package server

import (
	"workstation/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/projects/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// AddComment handles POST /api/projects/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.CreateCommentInput{
		UserID:          currentUserID(c),
		ProjectID:       id,
		Content:         req.Content,
		ParentCommentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListThoughts handles GET /api/thoughts
func (s *Server) ListThoughts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	thoughts, err := s.thoughtService.ListThoughts(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(thoughts)
}

// CreateThought handles POST /api/thoughts
func (s *Server) CreateThought(c *fiber.Ctx) error {
	var req struct {
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	thought, err := s.thoughtService.CreateThought(c.UserContext(), service.CreateThoughtInput{
		UserID:  currentUserID(c),
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thought)
}

// ToggleThoughtLike handles POST /api/thoughts/:id/like
func (s *Server) ToggleThoughtLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.thoughtService.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
