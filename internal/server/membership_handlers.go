package server

import (
	"workstation/internal/models"
	"workstation/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RequestToJoin handles POST /api/projects/:id/join. A repeated request
// answers 200 with the existing request instead of 201.
func (s *Server) RequestToJoin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Message     string `json:"message"`
		DesiredRole string `json:"desired_role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	jr, created, err := s.membershipService.RequestToJoin(c.UserContext(), service.RequestToJoinInput{
		UserID:      currentUserID(c),
		ProjectID:   id,
		Message:     req.Message,
		DesiredRole: req.DesiredRole,
	})
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"join_request": jr, "created": created})
}

// RespondToJoinRequest handles POST /api/join-requests/:id/respond
func (s *Server) RespondToJoinRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Decision models.JoinDecision `json:"decision"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	jr, err := s.membershipService.Respond(c.UserContext(), currentUserID(c), id, req.Decision)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(jr)
}

// ListJoinRequests handles GET /api/projects/:id/join-requests?status=pending
func (s *Server) ListJoinRequests(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	status := models.JoinRequestStatus(c.Query("status"))

	requests, err := s.membershipService.ListJoinRequests(c.UserContext(), currentUserID(c), id, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// MyJoinRequests handles GET /api/join-requests/me
func (s *Server) MyJoinRequests(c *fiber.Ctx) error {
	requests, err := s.membershipService.MyJoinRequests(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// AddMember handles POST /api/projects/:id/members
func (s *Server) AddMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	m, created, err := s.membershipService.AddMember(c.UserContext(), service.AddMemberInput{
		ActorID:   currentUserID(c),
		ProjectID: id,
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(m)
}

// ListMembers handles GET /api/projects/:id/members
func (s *Server) ListMembers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	members, err := s.membershipService.ListMembers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}
