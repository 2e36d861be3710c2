package server

import (
	"workstation/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Omitted fields are unchanged.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.profileService.UpdateProfile(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetProfileByUsername handles GET /api/profiles/:username
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	user, err := s.profileService.GetProfileByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetDashboard handles GET /api/dashboard
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	dash, err := s.dashboardService.Dashboard(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dash)
}

// GetStats handles GET /api/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.dashboardService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
