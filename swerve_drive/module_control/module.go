package control

import "swerve-core/swerve_drive/kinematics"

// Module runs the drive-speed and steer-position loops of one swerve module
// and holds the last commands sent to its actuators.
type Module struct {
	drive *PIDController
	steer *PIDController
	cfg   ModuleConfig

	target   kinematics.Target
	driveOut int16
	steerOut int16
}

func NewModule(cfg ModuleConfig) *Module {
	return &Module{
		drive: NewPIDController(cfg.DriveGain),
		steer: NewPIDController(cfg.SteerGain),
		cfg:   cfg,
	}
}

func (m *Module) SetTarget(t kinematics.Target) { m.target = t }

func (m *Module) Target() kinematics.Target { return m.target }

// Outputs returns the last drive and steer commands.
func (m *Module) Outputs() (drive, steer int16) { return m.driveOut, m.steerOut }

func (m *Module) DrivePID() *PIDController { return m.drive }

func (m *Module) SteerPID() *PIDController { return m.steer }

// Update computes this cycle's actuator commands. rpm is the measured drive
// speed, position the absolute encoder position, dt the elapsed seconds.
//
// While the actuator link is live both loops run; the steer loop tracks the
// negated encoder position and its output is negated back. When the link is
// stale the previous outputs decay by half and both integrals are cleared so
// nothing has wound up when telemetry returns.
func (m *Module) Update(state LinkState, rpm, position int, dt float64) (drive, steer int16) {
	if state != Live {
		m.driveOut /= 2
		m.steerOut /= 2
		m.drive.Reset()
		m.steer.Reset()
		return m.driveOut, m.steerOut
	}

	d := m.drive.Update(float64(m.target.RPM), float64(rpm), dt)
	d = ClampFloat(d, -m.cfg.MaxDrive, m.cfg.MaxDrive)

	s := m.steer.Update(float64(m.target.Ticks), float64(-position), dt)
	s = -ClampFloat(s, -m.cfg.SteerLimit, m.cfg.SteerLimit)

	m.driveOut = int16(d)
	m.steerOut = int16(s)
	return m.driveOut, m.steerOut
}
