package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_Values(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0,g=maybe")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "g", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
	assert.True(t, m.Enabled(" A ", 0), "names are case and space insensitive")
}

func TestEnabled_Rollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,over=150%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.Enabled("over", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("canary", 0), "partial rollouts skip anonymous users")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}

	on := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("canary", uid) {
			on++
		}
	}
	assert.InDelta(t, 250, on, 80)
}

func TestRawNamesSnapshot(t *testing.T) {
	m := NewManager(" bad ,ai_workers=on, y = 20% ,z=off,=on,w=")

	assert.Equal(t, map[string]string{"ai_workers": "on", "y": "20%", "z": "off"}, m.Raw())
	assert.Equal(t, []string{"ai_workers", "y", "z"}, m.Names())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 3)
	assert.True(t, snap[AIWorkers])
	assert.False(t, snap["z"])
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(AIWorkers, 1))
	assert.Empty(t, m.Raw())
	assert.Empty(t, m.Snapshot(1))
}
