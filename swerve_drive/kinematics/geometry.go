// Package kinematics maps body velocity commands to swerve module commands
// and resolves module headings into steer targets.
package kinematics

import "math"

// NumModules is the number of swerve modules on the chassis.
const NumModules = 4

// mountOffsets rotates a module-frame vector into the chassis frame:
// -π/N·(2i+3) for module i.
var mountOffsets = [NumModules]float64{
	-math.Pi / NumModules * 3,
	-math.Pi / NumModules * 5,
	-math.Pi / NumModules * 7,
	-math.Pi / NumModules * 9,
}

// rotationFactors scale the rotate command at each module's mounting radius.
// The chassis is square so every module sees the same lever arm.
var rotationFactors = [NumModules]float64{1, 1, 1, 1}

// MountOffset returns the fixed angular offset of module i in radians.
func MountOffset(i int) float64 {
	return mountOffsets[i]
}

// RotationFactor returns the rotation scale of module i.
func RotationFactor(i int) float64 {
	return rotationFactors[i]
}
