package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), Event{Type: EventNotification}, 1, 2))
	assert.NoError(t, n.StartUserSubscriber(context.Background(), func(uint, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestParseUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		channel string
		want    uint
		ok      bool
	}{
		{"notifications:user:42", 42, true},
		{"notifications:user:0", 0, false},
		{"notifications:user:abc", 0, false},
		{"chat:conv:5", 0, false},
		{"notifications:user:", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseUserChannel(tt.channel)
		assert.Equal(t, tt.ok, ok, tt.channel)
		assert.Equal(t, tt.want, got, tt.channel)
	}
}

func TestNotifier_PublishEventReachesSubscriber(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received = map[uint][]string{}
	)
	require.NoError(t, n.StartUserSubscriber(ctx, func(userID uint, payload string) {
		mu.Lock()
		defer mu.Unlock()
		received[userID] = append(received[userID], payload)
	}))

	err := n.PublishEvent(ctx, Event{Type: EventMessage, Payload: map[string]uint{"conversation_id": 9}}, 3, 4)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received[3]) == 1 && len(received[4]) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var ev struct {
		Type    string          `json:"type"`
		Payload map[string]uint `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(received[3][0]), &ev))
	assert.Equal(t, EventMessage, ev.Type)
	assert.Equal(t, uint(9), ev.Payload["conversation_id"])
}

func TestNotifier_SubscriberSurvivesPanic(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		calls int
	)
	require.NoError(t, n.StartUserSubscriber(ctx, func(userID uint, payload string) {
		mu.Lock()
		calls++
		mu.Unlock()
		if payload == "boom" {
			panic("handler failure")
		}
	}))

	require.NoError(t, n.PublishUser(ctx, 1, "boom"))
	require.NoError(t, n.PublishUser(ctx, 1, "fine"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 10*time.Millisecond)
}
