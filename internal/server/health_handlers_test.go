package server

import (
	"net/http"
	"testing"

	"workstation/internal/config"
	"workstation/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, "")

	status, _ := ts.do(t, http.MethodGet, "/health/live", 0, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, raw := ts.do(t, http.MethodGet, "/health/ready", 0, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, "healthy", decode[ReadinessResponse](t, raw).Status)

	ts.mr.Close()
	status, raw = ts.do(t, http.MethodGet, "/health/ready", 0, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	checks := decode[ReadinessResponse](t, raw).Checks
	assert.Equal(t, "healthy", checks.Database)
	assert.Equal(t, "unhealthy", checks.Redis)
	assert.Zero(t, checks.Websocket)
}

func TestReadiness_WithoutRedis(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	srv, err := NewServerWithDeps(&config.Config{JWTSecret: testSecret}, db, nil)
	require.NoError(t, err)
	ts := &testServer{srv: srv, app: srv.App(), db: db}

	status, raw := ts.do(t, http.MethodGet, "/health/ready", 0, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	checks := decode[ReadinessResponse](t, raw).Checks
	assert.Equal(t, "unavailable", checks.Redis)
	assert.Equal(t, "healthy", checks.Database)

	// the API itself still serves without Redis
	user := testutil.CreateUser(t, db, "solo")
	status, _ = ts.do(t, http.MethodGet, "/api/users/me", user.ID, nil)
	assert.Equal(t, fiber.StatusOK, status)
}
