package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enforceRateLimits(t *testing.T) {
	t.Helper()
	prev := RateLimitBypass
	RateLimitBypass = func() bool { return false }
	t.Cleanup(func() { RateLimitBypass = prev })
}

func TestCheckRateLimit_BlocksAfterLimit(t *testing.T) {
	enforceRateLimits(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "send_message", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d should be allowed", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "send_message", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CheckRateLimit(ctx, rdb, "send_message", "user:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "other identities have their own window")

	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "send_message", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window should reset after expiry")
}

func TestCheckRateLimit_Bypass(t *testing.T) {
	prev := RateLimitBypass
	RateLimitBypass = func() bool { return true }
	defer func() { RateLimitBypass = prev }()

	allowed, err := CheckRateLimit(context.Background(), nil, "x", "y", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware_Policies(t *testing.T) {
	enforceRateLimits(t)

	open := fiber.New()
	open.Get("/", RateLimit(nil, 1, time.Minute, "open"), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	resp, err := open.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	closed := fiber.New()
	closed.Get("/", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed, "closed"), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	resp, err = closed.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	enforceRateLimits(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/send", RateLimit(rdb, 2, time.Minute, "send"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/send", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)
}
