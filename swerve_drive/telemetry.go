package main

import (
	"fmt"
	"strings"

	"swerve-core/swerve_drive/kinematics"
	control "swerve-core/swerve_drive/module_control"
	"swerve-core/swerve_drive/odometry"
)

// Telemetry is the per-cycle view of the controller state.
type Telemetry struct {
	Cycle     uint64
	Link      control.LinkState
	Positions [kinematics.NumModules]int
	Targets   [kinematics.NumModules]kinematics.Target
	RPM       [kinematics.NumModules]int
	Drive     [kinematics.NumModules]int16
	Steer     [kinematics.NumModules]int16
	Pose      odometry.Pose
	Velocity  odometry.Pose
}

func (r *Runner) Snapshot() Telemetry {
	t := Telemetry{
		Cycle:    r.cycles,
		Link:     r.linkState,
		Pose:     r.odom.Pose(),
		Velocity: r.velocity.Velocity(),
	}
	for i, m := range r.modules {
		t.Positions[i] = r.encoders[i].Position
		t.Targets[i] = m.Target()
		t.RPM[i] = r.drive.RPM(i)
		t.Drive[i], t.Steer[i] = m.Outputs()
	}
	return t
}

func (t Telemetry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle=%d link=%s pos:", t.Cycle, t.Link)
	for _, p := range t.Positions {
		fmt.Fprintf(&b, " %6d", p)
	}
	b.WriteString(" tag:")
	for _, tg := range t.Targets {
		fmt.Fprintf(&b, " %6d", tg.Ticks)
	}
	b.WriteString(" rpm:")
	for _, rpm := range t.RPM {
		fmt.Fprintf(&b, " %5d", rpm)
	}
	b.WriteString(" dc:")
	for i := range t.Drive {
		fmt.Fprintf(&b, " %6d/%6d", t.Drive[i], t.Steer[i])
	}
	fmt.Fprintf(&b, " est: %8.1f %8.1f %7.3f vel: %8.1f %8.1f %7.3f",
		t.Pose.Position.X, t.Pose.Position.Y, t.Pose.Heading,
		t.Velocity.Position.X, t.Velocity.Position.Y, t.Velocity.Heading)
	return b.String()
}

// diagnostics renders the loop internals behind the telemetry line: PID
// terms, drive motor current and temperature, sensor board channels and
// encoder link counters.
func (r *Runner) diagnostics() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle=%d", r.cycles)
	for i, m := range r.modules {
		d, s := m.DrivePID().Diagnostics(), m.SteerPID().Diagnostics()
		motor := r.drive.Motor(i)
		fmt.Fprintf(&b, " m%d[drive P=%.1f I=%.1f steer P=%.1f I=%.1f cur=%d temp=%d]",
			i+1, d.P, d.I, s.P, s.I, motor.Current, motor.Temperature)
	}
	fmt.Fprintf(&b, " sensors=%v/%v", r.sensors.Channels(0), r.sensors.Channels(1))
	enc := r.link.Stats()
	fmt.Fprintf(&b, " encoder polls=%d timeouts=%d checksum_errors=%d", enc.Polls, enc.Timeouts, enc.Checksums)
	return b.String()
}
