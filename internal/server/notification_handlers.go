package server

import "github.com/gofiber/fiber/v2"

// ListNotifications handles GET /api/notifications?unread=true
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	unreadOnly := c.QueryBool("unread", false)

	list, err := s.notificationService.List(c.UserContext(), currentUserID(c), unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetUnreadCounts handles GET /api/notifications/unread-counts
func (s *Server) GetUnreadCounts(c *fiber.Ctx) error {
	counts, err := s.notificationService.UnreadCounts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"marked": n})
}
