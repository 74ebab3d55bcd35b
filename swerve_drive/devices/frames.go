// Package devices decodes and encodes the device frames on both CAN buses
// using the signal table in config/can/can_map.csv.
package devices

import (
	"fmt"

	"swerve-core/utils"
)

// Frame names in the CAN map.
const (
	ControllerFrame   = "CONTROLLER"
	SensorBoardFrame1 = "SENSOR_BOARD_1"
	SensorBoardFrame2 = "SENSOR_BOARD_2"
	SteerCommandFrame = "STEER_CMD"
	DriveCommandFrame = "DRIVE_CMD"
	driveFeedbackName = "DRIVE_FB_%d"
)

// Drive controllers report on 0x201..0x208. Any of them proves the drive bus
// is alive, even those beyond the four wheel motors.
const (
	driveFeedbackBase uint32 = 0x200
	driveFeedbackLast uint32 = 0x208
)

// IsDriveHeartbeat reports whether id is a drive controller telemetry frame.
func IsDriveHeartbeat(id uint32) bool {
	return id > driveFeedbackBase && id <= driveFeedbackLast
}

func frameID(cmap *utils.CANMap, name string) (uint32, error) {
	fd, err := cmap.FrameByName(name)
	if err != nil {
		return 0, err
	}
	return fd.ID, nil
}

func requireSignals(cmap *utils.CANMap, frame string, names ...string) error {
	fd, err := cmap.FrameByName(frame)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, ok := fd.Signal(n); !ok {
			return fmt.Errorf("frame %s: missing signal %q", frame, n)
		}
	}
	return nil
}
