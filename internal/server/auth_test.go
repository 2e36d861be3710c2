package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workstation/internal/cache"
	"workstation/internal/models"
	"workstation/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired_BearerToken(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")

	status, raw := ts.do(t, http.MethodGet, "/api/users/me", 0, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, errorCode(t, raw))

	status, raw = ts.do(t, http.MethodGet, "/api/users/me", user.ID, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, "alice", decode[models.User](t, raw).Username)
}

func TestAuthRequired_WSTicket(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")

	status, raw := ts.do(t, http.MethodPost, "/api/ws/ticket", user.ID, nil)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	issued := decode[struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}](t, raw)
	require.NotEmpty(t, issued.Ticket)
	assert.Equal(t, int(cache.WSTicketTTL.Seconds()), issued.ExpiresIn)

	key := cache.WSTicketKey(issued.Ticket)
	require.True(t, ts.mr.Exists(key))
	assert.Equal(t, cache.WSTicketTTL, ts.mr.TTL(key))

	// A ticket on a plain route authenticates once and is consumed.
	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/users/me?ticket="+issued.Ticket, nil), -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, ts.mr.Exists(key), "ticket must be single-use")

	resp, err = ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/users/me?ticket="+issued.Ticket, nil), -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_WSPathRejectsBadTicket(t *testing.T) {
	ts := newTestServer(t, "")
	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/ws?ticket=nope", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocketRoute_RequiresUpgrade(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")

	require.NoError(t, ts.rdb.Set(context.Background(), cache.WSTicketKey("t-1"), user.ID, time.Minute).Err())
	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/api/ws?ticket=t-1", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestIssueWSTicket_WithoutRedis(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")
	ts.srv.redis = nil

	status, _ := ts.do(t, http.MethodPost, "/api/ws/ticket", user.ID, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestAdminRequired(t *testing.T) {
	ts := newTestServer(t, "ai_workers=on,beta=25%")
	member := testutil.CreateUser(t, ts.db, "member")
	admin := testutil.CreateUser(t, ts.db, "root")
	require.NoError(t, ts.db.Model(admin).Update("is_admin", true).Error)

	status, raw := ts.do(t, http.MethodGet, "/api/admin/feature-flags", member.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, errorCode(t, raw))

	status, raw = ts.do(t, http.MethodGet, "/api/admin/feature-flags", admin.ID, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	body := decode[struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}](t, raw)
	assert.Equal(t, map[string]string{"ai_workers": "on", "beta": "25%"}, body.Raw)
	assert.True(t, body.Evaluated["ai_workers"])
}

func TestFeatureRequired_HidesAIRoutes(t *testing.T) {
	ts := newTestServer(t, "ai_workers=off")
	user := testutil.CreateUser(t, ts.db, "alice")

	status, raw := ts.do(t, http.MethodGet, "/api/ai/workers", user.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, errorCode(t, raw))

	status, raw = ts.do(t, http.MethodGet, "/api/feature-flags", user.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	flags := decode[struct {
		Flags map[string]bool `json:"flags"`
	}](t, raw)
	assert.False(t, flags.Flags["ai_workers"])
}
