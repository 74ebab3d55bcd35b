package control

import "time"

// LinkState is the liveness of the drive actuator telemetry.
type LinkState int

const (
	Stale LinkState = iota
	Live
)

func (s LinkState) String() string {
	if s == Live {
		return "live"
	}
	return "stale"
}

// Heartbeat tracks the age of the last actuator telemetry frame. It starts
// stale until the first Beat.
type Heartbeat struct {
	timeout time.Duration
	last    time.Time
	seen    bool
}

func NewHeartbeat(timeout time.Duration) *Heartbeat {
	return &Heartbeat{timeout: timeout}
}

// Beat records telemetry received at now.
func (h *Heartbeat) Beat(now time.Time) {
	h.last = now
	h.seen = true
}

// Age returns the time since the last beat, or the timeout if none was seen.
func (h *Heartbeat) Age(now time.Time) time.Duration {
	if !h.seen {
		return h.timeout
	}
	return now.Sub(h.last)
}

// State is Live while the last beat is younger than the timeout.
func (h *Heartbeat) State(now time.Time) LinkState {
	if h.seen && now.Sub(h.last) < h.timeout {
		return Live
	}
	return Stale
}
