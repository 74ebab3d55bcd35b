// Package odometry integrates per-wheel motion into a dead-reckoned pose.
package odometry

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"swerve-core/swerve_drive/kinematics"
)

// Pose is the accumulated robot position in millimetres and heading in
// radians. Neither is wrapped.
type Pose struct {
	Position r2.Vec
	Heading  float64
}

// Sub returns the component-wise difference p - q.
func (p Pose) Sub(q Pose) Pose {
	return Pose{Position: r2.Sub(p.Position, q.Position), Heading: p.Heading - q.Heading}
}

// Estimator owns the pose. It only ever advances.
type Estimator struct {
	pose Pose
}

func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) Pose() Pose { return e.pose }

// Integrate adds one cycle of wheel motion. Each displacement has the
// distance travelled as magnitude and the wheel's steer angle as phase. The
// displacement is rotated into the chassis frame for x/y; its unrotated real
// part is summed into heading without averaging across wheels, so callers
// scale displacements for the chassis they run on.
func (e *Estimator) Integrate(d [kinematics.NumModules]complex128) {
	for i, w := range d {
		rotated := w * cmplx.Rect(1, kinematics.MountOffset(i))
		e.pose.Position = r2.Add(e.pose.Position, r2.Vec{X: real(rotated), Y: imag(rotated)})
		e.pose.Heading += real(w)
	}
}

// Displacement builds one wheel's integrate input from its measured drive
// speed and steer position.
func Displacement(rpm float64, dt time.Duration, mmPerRev float64, ticksPerRev int, steerPosition int) complex128 {
	rho := rpm * dt.Minutes() * mmPerRev
	theta := 2 * math.Pi / float64(ticksPerRev) * float64(steerPosition)
	return cmplx.Rect(rho, theta)
}

// VelocityTracker differentiates successive poses.
type VelocityTracker struct {
	prev   Pose
	primed bool
	vel    Pose
}

// Update records pose and returns the rate of change since the previous
// call in mm/s and rad/s. The first call and non-positive dt return zero.
func (v *VelocityTracker) Update(pose Pose, dt time.Duration) Pose {
	if !v.primed || dt <= 0 {
		v.prev = pose
		v.primed = true
		v.vel = Pose{}
		return v.vel
	}
	d := pose.Sub(v.prev)
	s := 1 / dt.Seconds()
	v.vel = Pose{Position: r2.Scale(s, d.Position), Heading: d.Heading * s}
	v.prev = pose
	return v.vel
}

// Velocity returns the last computed rate.
func (v *VelocityTracker) Velocity() Pose { return v.vel }
