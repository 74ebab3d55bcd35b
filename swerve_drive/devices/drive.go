package devices

import (
	"fmt"

	"go.einride.tech/can"

	"swerve-core/swerve_drive/kinematics"
	"swerve-core/utils"
)

// MotorFeedback is the decoded telemetry of one drive controller.
type MotorFeedback struct {
	RotorAngle  int
	RPM         int
	Current     int
	Temperature int
}

// DriveFeedback holds the latest telemetry of the four drive motors.
type DriveFeedback struct {
	cmap   *utils.CANMap
	ids    [kinematics.NumModules]uint32
	motors [kinematics.NumModules]MotorFeedback
}

func NewDriveFeedback(cmap *utils.CANMap) (*DriveFeedback, error) {
	d := &DriveFeedback{cmap: cmap}
	for i := range d.ids {
		name := fmt.Sprintf(driveFeedbackName, i+1)
		id, err := frameID(cmap, name)
		if err != nil {
			return nil, err
		}
		if err := requireSignals(cmap, name, "rotor_angle", "rpm", "current", "temperature"); err != nil {
			return nil, err
		}
		d.ids[i] = id
	}
	return d, nil
}

// Read consumes a bus B frame. heartbeat is true for any drive controller
// telemetry id, whether or not it belongs to a wheel motor and whether or not
// its payload decodes.
func (d *DriveFeedback) Read(f can.Frame) (heartbeat bool, err error) {
	if f.IsRemote || f.IsExtended || !IsDriveHeartbeat(f.ID) {
		return false, nil
	}
	for i, id := range d.ids {
		if f.ID != id {
			continue
		}
		values, err := d.cmap.DecodeEinrideFrame(f)
		if err != nil {
			return true, fmt.Errorf("drive feedback %d: %w", i+1, err)
		}
		d.motors[i] = MotorFeedback{
			RotorAngle:  int(values["rotor_angle"]),
			RPM:         int(values["rpm"]),
			Current:     int(values["current"]),
			Temperature: int(values["temperature"]),
		}
	}
	return true, nil
}

func (d *DriveFeedback) Motor(i int) MotorFeedback { return d.motors[i] }

// RPM returns the last measured speed of module i.
func (d *DriveFeedback) RPM(i int) int { return d.motors[i].RPM }
