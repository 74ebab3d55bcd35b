package control

import "math"

// Actuator command ranges.
const (
	// DriveCommandMax is the full-scale current command of the drive controllers.
	DriveCommandMax = 16384
	// SteerCommandMax caps the steer duty at 70% of the signed 16-bit range.
	SteerCommandMax = math.MaxInt16 * 7 / 10
)

// ClampFloat clamps value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
