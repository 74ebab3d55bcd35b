package utils

import "time"

// Gate is a polled periodic trigger. Fire reports true at most once per
// period and returns the time elapsed since the previous firing. An overrun
// is not caught up: the next period starts at the late firing time.
type Gate struct {
	period time.Duration
	last   time.Time
	armed  bool
}

func NewGate(period time.Duration) *Gate {
	return &Gate{period: period}
}

func (g *Gate) Period() time.Duration { return g.period }

// Fire must be called with a non-decreasing now. The first call only arms the
// gate so the first delta is a real period rather than time since the epoch.
func (g *Gate) Fire(now time.Time) (time.Duration, bool) {
	if !g.armed {
		g.last = now
		g.armed = true
		return 0, false
	}
	delta := now.Sub(g.last)
	if delta < g.period {
		return 0, false
	}
	g.last = now
	return delta, true
}
