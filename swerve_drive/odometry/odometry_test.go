package odometry

import (
	"math"
	"math/cmplx"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"

	"swerve-core/swerve_drive/kinematics"
)

const eps = 1e-9

func TestIntegrate_ZeroMotionStaysAtOrigin(t *testing.T) {
	e := NewEstimator()
	for i := 0; i < 100; i++ {
		e.Integrate([4]complex128{})
	}
	assert.Equal(t, Pose{}, e.Pose())
}

func TestIntegrate_RotatesIntoChassisFrame(t *testing.T) {
	e := NewEstimator()

	// Every wheel reports 10 mm along the direction that maps to chassis +x.
	var d [4]complex128
	for i := range d {
		d[i] = cmplx.Rect(10, -kinematics.MountOffset(i))
	}
	e.Integrate(d)

	p := e.Pose()
	assert.InDelta(t, 40.0, p.Position.X, eps)
	assert.InDelta(t, 0.0, p.Position.Y, eps)

	var wantHeading float64
	for i := range d {
		wantHeading += real(d[i])
	}
	assert.InDelta(t, wantHeading, p.Heading, eps)
}

func TestIntegrate_HeadingSumsUnrotatedRealParts(t *testing.T) {
	e := NewEstimator()
	e.Integrate([4]complex128{1, 2, 3, 4})
	assert.InDelta(t, 10.0, e.Pose().Heading, eps, "no 1/4 averaging")

	e.Integrate([4]complex128{complex(0, 5), 0, 0, 0})
	assert.InDelta(t, 10.0, e.Pose().Heading, eps, "imaginary parts do not turn the robot")
}

func TestIntegrate_AccumulatesWithoutWrap(t *testing.T) {
	e := NewEstimator()
	for i := 0; i < 1000; i++ {
		e.Integrate([4]complex128{1, 1, 1, 1})
	}
	assert.InDelta(t, 4000.0, e.Pose().Heading, 1e-6)
}

func TestDisplacement(t *testing.T) {
	// 600 rpm for 10 ms at 600 mm/rev is 60 mm.
	d := Displacement(600, 10*time.Millisecond, 600, 4096, 0)
	assert.InDelta(t, 60.0, real(d), eps)
	assert.InDelta(t, 0.0, imag(d), eps)

	d = Displacement(600, 10*time.Millisecond, 600, 4096, 1024)
	assert.InDelta(t, 60.0, cmplx.Abs(d), eps)
	assert.InDelta(t, math.Pi/2, cmplx.Phase(d), eps)

	assert.Equal(t, complex(0, 0), Displacement(0, 10*time.Millisecond, 600, 4096, 999))
}

func TestVelocityTracker(t *testing.T) {
	var v VelocityTracker
	assert.Equal(t, Pose{}, v.Update(Pose{Position: r2.Vec{X: 5}}, 10*time.Millisecond), "first update primes")

	got := v.Update(Pose{Position: r2.Vec{X: 15, Y: -5}, Heading: 0.1}, 10*time.Millisecond)
	assert.InDelta(t, 1000.0, got.Position.X, eps)
	assert.InDelta(t, -500.0, got.Position.Y, eps)
	assert.InDelta(t, 10.0, got.Heading, eps)
	assert.Equal(t, got, v.Velocity())
}
