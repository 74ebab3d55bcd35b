package kinematics

import (
	"math"
	"math/cmplx"
)

// BodyVelocity is a normalised operator command. Forward and Strafe are in
// [-1, 1]; Rotate is in [-1, 1] before any scaling applied by the caller.
type BodyVelocity struct {
	Forward float64
	Strafe  float64
	Rotate  float64
}

// ComputeWheelCommands returns one complex command per module. The magnitude
// is the normalised module speed in [0, 1]; the phase is the wheel heading in
// the module's own frame. heading is the robot heading used to make the
// translation field-oriented.
func ComputeWheelCommands(v BodyVelocity, heading float64) [NumModules]complex128 {
	translation := complex(v.Forward, v.Strafe) * cmplx.Rect(1, -heading)

	var out [NumModules]complex128
	peak := 0.0
	for i := range out {
		offset := cmplx.Rect(1, mountOffsets[i])
		chassis := translation + complex(v.Rotate*rotationFactors[i], 0)*offset
		out[i] = chassis / offset
		peak = math.Max(peak, cmplx.Abs(out[i]))
	}

	if peak > 1 {
		scale := complex(1/peak, 0)
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// Target is the steer position and drive speed for one module.
type Target struct {
	Ticks     int
	RPM       int
	Direction int
}

// Resolver converts a commanded wheel heading into a steer target that never
// moves the module more than a quarter turn, flipping drive polarity instead.
type Resolver struct {
	TicksPerRev int
	MaxRPM      float64
}

// Resolve picks the target nearest to current among the headings equivalent
// to angle modulo half a turn. Ties round half away from zero.
func (r Resolver) Resolve(angle, magnitude float64, current int) Target {
	half := r.TicksPerRev / 2
	raw := int(float64(r.TicksPerRev) / (2 * math.Pi) * angle)
	offset := raw - current
	turns := int(math.Round(2 * float64(offset) / float64(r.TicksPerRev)))

	dir := 1
	if turns%2 != 0 {
		dir = -1
	}
	return Target{
		Ticks:     raw - turns*half,
		RPM:       int(magnitude * r.MaxRPM * float64(dir)),
		Direction: dir,
	}
}
