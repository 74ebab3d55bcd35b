package control

// ModuleConfig holds the gains and output limits shared by all modules.
type ModuleConfig struct {
	DriveGain  PIDGain `json:"drive_gain"`
	SteerGain  PIDGain `json:"steer_gain"`
	MaxDrive   float64 `json:"max_drive"`
	SteerLimit float64 `json:"steer_limit"`
}

// DefaultModuleConfig returns the gains tuned on the robot. The steer PID is
// limited to 70% of the steer command range.
func DefaultModuleConfig() ModuleConfig {
	return ModuleConfig{
		DriveGain:  PIDGain{Kp: 1.2, Ki: 0.3},
		SteerGain:  PIDGain{Kp: 3.65, Ki: 0.85, Kd: 0.0005},
		MaxDrive:   DriveCommandMax,
		SteerLimit: 0.7 * SteerCommandMax,
	}
}
