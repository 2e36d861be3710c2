package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	other, err := hub.Register(11, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Broadcast(10, `{"type":"notification"}`))
	assert.Equal(t, `{"type":"notification"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"notification"}`, string(<-b.Send))
	assert.Empty(t, other.Send)

	assert.Equal(t, 0, hub.Broadcast(99, "nobody"))
	assert.Equal(t, 3, hub.ConnectionCount())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()

	c, err := hub.Register(5, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(5))

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.False(t, hub.IsOnline(5))
	assert.Equal(t, 0, hub.ConnectionCount())
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrUserConnsMax)

	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_RegisterAfterShutdown(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ConnectionCount())

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.NoError(t, hub.Shutdown(context.Background()))
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	assert.Len(t, c.Send, sendBufferSize)
}

func TestHub_StartWiringForwardsUserChannel(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(21, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(ctx, 21, `{"type":"unread_counts"}`))
	require.NoError(t, n.PublishUser(ctx, 22, `{"type":"unread_counts"}`))

	assert.Eventually(t, func() bool {
		return len(c.Send) == 1
	}, testEventuallyTimeout, testPollInterval)
	assert.Never(t, func() bool {
		return len(c.Send) > 1
	}, 10*testPollInterval, testPollInterval)
}
