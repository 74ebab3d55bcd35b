package devices

import (
	"fmt"

	"go.einride.tech/can"

	"swerve-core/swerve_drive/kinematics"
	"swerve-core/utils"
)

// Commander packs one 16-bit command per module into a single frame.
type Commander struct {
	cmap    *utils.CANMap
	frame   string
	signals [kinematics.NumModules]string
	values  map[string]float64
}

func newCommander(cmap *utils.CANMap, frame, prefix string) (*Commander, error) {
	c := &Commander{cmap: cmap, frame: frame, values: make(map[string]float64, kinematics.NumModules)}
	for i := range c.signals {
		c.signals[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	if err := requireSignals(cmap, frame, c.signals[:]...); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDriveCommander builds the drive current frame for bus B.
func NewDriveCommander(cmap *utils.CANMap) (*Commander, error) {
	return newCommander(cmap, DriveCommandFrame, "drive_cmd")
}

// NewSteerCommander builds the steer duty frame for bus A.
func NewSteerCommander(cmap *utils.CANMap) (*Commander, error) {
	return newCommander(cmap, SteerCommandFrame, "steer_cmd")
}

// Frame encodes cmds. Values outside the signal range are clamped by the map.
func (c *Commander) Frame(cmds [kinematics.NumModules]int16) (can.Frame, error) {
	for i, name := range c.signals {
		c.values[name] = float64(cmds[i])
	}
	return c.cmap.EncodeEinrideFrame(c.frame, c.values)
}
