package devices

import (
	"fmt"

	"go.einride.tech/can"

	"swerve-core/swerve_drive/kinematics"
	"swerve-core/utils"
)

// Stick axis order in ControllerInput.Sticks.
const (
	StickLX = iota
	StickLY
	StickRX
	StickRY
)

var stickSignals = [4]string{"stick_lx", "stick_ly", "stick_rx", "stick_ry"}

// ControllerConfig shapes raw stick bytes into a velocity command.
type ControllerConfig struct {
	Bias        int     `json:"bias"`
	Deadzone    int     `json:"deadzone"`
	RotateScale float64 `json:"rotate_scale"`
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{Bias: 128, Deadzone: 15, RotateScale: 0.75}
}

// ControllerInput is the latest operator input: two button bytes and four
// stick axes, each already de-biased and deadzone-filtered.
type ControllerInput struct {
	Buttons [2]uint8
	Sticks  [4]int
}

// ApplyDeadzone zeroes v when its magnitude is below deadzone.
func ApplyDeadzone(v, deadzone int) int {
	if v > -deadzone && v < deadzone {
		return 0
	}
	return v
}

// Controller tracks the operator-input frame.
type Controller struct {
	cmap  *utils.CANMap
	id    uint32
	cfg   ControllerConfig
	input ControllerInput
}

func NewController(cmap *utils.CANMap, cfg ControllerConfig) (*Controller, error) {
	id, err := frameID(cmap, ControllerFrame)
	if err != nil {
		return nil, err
	}
	if err := requireSignals(cmap, ControllerFrame, append([]string{"button_0", "button_1"}, stickSignals[:]...)...); err != nil {
		return nil, err
	}
	return &Controller{cmap: cmap, id: id, cfg: cfg}, nil
}

func (c *Controller) ID() uint32 { return c.id }

func (c *Controller) Input() ControllerInput { return c.input }

// Read consumes f if it is the controller frame. Other frames are ignored.
func (c *Controller) Read(f can.Frame) (bool, error) {
	if f.ID != c.id || f.IsRemote || f.IsExtended {
		return false, nil
	}
	values, err := c.cmap.DecodeEinrideFrame(f)
	if err != nil {
		return true, fmt.Errorf("controller: %w", err)
	}

	var in ControllerInput
	in.Buttons[0] = uint8(values["button_0"])
	in.Buttons[1] = uint8(values["button_1"])
	for i, name := range stickSignals {
		in.Sticks[i] = ApplyDeadzone(int(values[name])-c.cfg.Bias, c.cfg.Deadzone)
	}
	c.input = in
	return true, nil
}

// Velocity maps the sticks to a body velocity: left stick up drives
// forward, left stick sideways strafes, right stick X rotates.
func (c *Controller) Velocity() kinematics.BodyVelocity {
	s := c.input.Sticks
	return kinematics.BodyVelocity{
		Forward: float64(-s[StickLY]) / 128,
		Strafe:  float64(s[StickLX]) / 128,
		Rotate:  float64(s[StickRX]) / 128 * c.cfg.RotateScale,
	}
}
