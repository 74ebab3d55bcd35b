package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.einride.tech/can"
)

// startupLogEvery limits the "still waiting" line to roughly once a second.
const startupLogEvery = 200

// waitForSources blocks until both sensor board frames and the controller
// frame have each been received once on bus A. It sleeps between attempts
// and gives up only when ctx ends. Drive telemetry that queued up meanwhile
// is discarded so it cannot count as a fresh heartbeat.
func (r *Runner) waitForSources(ctx context.Context) error {
	ids := r.sensors.IDs()
	pending := map[uint32]bool{
		ids[0]:            true,
		ids[1]:            true,
		r.controller.ID(): true,
	}

	for attempt := 0; ; attempt++ {
		r.drain(r.inboxA, func(f can.Frame) {
			r.handleBusA(f)
			delete(pending, f.ID)
		})
		if len(pending) == 0 {
			break
		}

		if attempt%startupLogEvery == 0 {
			r.log.Info("Waiting for CAN ids %s on bus %s", formatIDs(pending), r.cfg.Bus.A)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		r.clock.Sleep(r.cfg.startupPoll())
	}

	r.drain(r.inboxB, func(can.Frame) {})
	r.log.Info("All startup sources seen; entering control loop")
	return nil
}

func formatIDs(set map[uint32]bool) string {
	ids := make([]uint32, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("0x%X", id)
	}
	return strings.Join(parts, ",")
}
