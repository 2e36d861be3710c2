package server

import (
	"errors"
	"strconv"
	"strings"

	"workstation/internal/cache"
	"workstation/internal/middleware"
	"workstation/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AuthRequired returns the authentication middleware. A single-use ws ticket
// in the query string is tried first; otherwise a Bearer JWT is required.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userID").(uint); ok {
			return c.Next()
		}

		if ticket := c.Query("ticket"); ticket != "" {
			userID, err := s.consumeWSTicket(c, ticket)
			if err == nil {
				middleware.SetUserID(c, userID)
				return c.Next()
			}
			if strings.HasPrefix(c.Path(), "/api/ws") {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		return middleware.AuthRequired(c)
	}
}

// consumeWSTicket atomically reads and deletes a ticket issued by IssueWSTicket.
func (s *Server) consumeWSTicket(c *fiber.Ctx, ticket string) (uint, error) {
	if s.redis == nil {
		return 0, middleware.ErrInvalidToken
	}
	raw, err := s.redis.GetDel(c.UserContext(), cache.WSTicketKey(ticket)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, middleware.ErrInvalidToken
		}
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, middleware.ErrInvalidSubject
	}
	return uint(id), nil
}

// optionalUserID returns the caller when a valid Bearer token is present.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	token, err := middleware.BearerToken(c.Get("Authorization"))
	if err != nil {
		return 0
	}
	userID, err := middleware.ParseUserID(token, s.config.JWTSecret)
	if err != nil {
		return 0
	}
	return userID
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// FeatureRequired hides a route group behind a feature flag. Disabled
// features answer 404 so clients cannot probe them.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, currentUserID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", flag))
		}
		return c.Next()
	}
}

// IssueWSTicket handles POST /api/ws/ticket
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "realtime delivery unavailable",
		})
	}

	ticket := uuid.NewString()
	userID := currentUserID(c)
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket), strconv.FormatUint(uint64(userID), 10), cache.WSTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}
