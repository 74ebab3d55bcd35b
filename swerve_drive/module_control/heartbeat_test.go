package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeat_StartsStale(t *testing.T) {
	h := NewHeartbeat(100 * time.Millisecond)
	now := time.Unix(10, 0)
	assert.Equal(t, Stale, h.State(now))
	assert.Equal(t, 100*time.Millisecond, h.Age(now))
}

func TestHeartbeat_TimeoutBoundary(t *testing.T) {
	h := NewHeartbeat(100 * time.Millisecond)
	t0 := time.Unix(10, 0)
	h.Beat(t0)

	assert.Equal(t, Live, h.State(t0))
	assert.Equal(t, Live, h.State(t0.Add(99*time.Millisecond)))
	assert.Equal(t, Stale, h.State(t0.Add(100*time.Millisecond)), "age >= timeout is stale")

	h.Beat(t0.Add(150 * time.Millisecond))
	assert.Equal(t, Live, h.State(t0.Add(151*time.Millisecond)), "recovers on the next beat")
	assert.Equal(t, time.Millisecond, h.Age(t0.Add(151*time.Millisecond)))
}

func TestLinkState_String(t *testing.T) {
	assert.Equal(t, "live", Live.String())
	assert.Equal(t, "stale", Stale.String())
}
