package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_FiresOncePerPeriod(t *testing.T) {
	clk := NewMockClock(time.Unix(1000, 0))
	g := NewGate(10 * time.Millisecond)

	_, ok := g.Fire(clk.Now())
	assert.False(t, ok, "first call only arms")

	clk.Advance(9 * time.Millisecond)
	_, ok = g.Fire(clk.Now())
	assert.False(t, ok)

	clk.Advance(time.Millisecond)
	dt, ok := g.Fire(clk.Now())
	assert.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, dt)

	_, ok = g.Fire(clk.Now())
	assert.False(t, ok, "same instant cannot fire twice")
}

func TestGate_OverrunDoesNotCatchUp(t *testing.T) {
	clk := NewMockClock(time.Unix(1000, 0))
	g := NewGate(10 * time.Millisecond)
	g.Fire(clk.Now())

	clk.Advance(35 * time.Millisecond)
	dt, ok := g.Fire(clk.Now())
	assert.True(t, ok)
	assert.Equal(t, 35*time.Millisecond, dt)

	// No backlog of missed periods.
	_, ok = g.Fire(clk.Now())
	assert.False(t, ok)
	clk.Advance(5 * time.Millisecond)
	_, ok = g.Fire(clk.Now())
	assert.False(t, ok)
	clk.Advance(5 * time.Millisecond)
	_, ok = g.Fire(clk.Now())
	assert.True(t, ok)
}

func TestMockClock_SleepAdvances(t *testing.T) {
	start := time.Unix(0, 0)
	clk := NewMockClock(start)
	clk.Sleep(5 * time.Millisecond)
	clk.Sleep(5 * time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, clk.Since(start))
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, clk.Sleeps())
}
