package server

import (
	"context"
	"time"

	"workstation/internal/database"

	"github.com/gofiber/fiber/v2"
)

// LivenessCheck handles GET /health/live
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessChecks reports each dependency of the API.
type ReadinessChecks struct {
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Websocket int    `json:"websocket"`
}

// ReadinessResponse is the body of GET /health/ready.
type ReadinessResponse struct {
	Status string          `json:"status"`
	Checks ReadinessChecks `json:"checks"`
	Time   time.Time       `json:"time"`
}

// ReadinessCheck handles GET /health/ready. Redis is required for realtime
// delivery, so a missing client reports unavailable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(ReadinessResponse{
		Status: overall,
		Checks: ReadinessChecks{
			Database:  dbStatus,
			Redis:     redisStatus,
			Websocket: s.hub.ConnectionCount(),
		},
		Time: time.Now(),
	})
}
