package control

// PIDGain holds fixed PID gains.
type PIDGain struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
}

// PIDController implements a discrete PID controller over wall-clock dt in
// seconds. Only the integral and derivative memory change after construction.
type PIDController struct {
	gain PIDGain

	// State
	integral    float64
	prevError   float64
	initialized bool
}

// NewPIDController creates a new PID controller with the given gains
func NewPIDController(gain PIDGain) *PIDController {
	return &PIDController{gain: gain}
}

// Reset clears the integral accumulator and derivative memory
func (pid *PIDController) Reset() {
	pid.integral = 0.0
	pid.prevError = 0.0
	pid.initialized = false
}

// Update computes the control output for one step.
func (pid *PIDController) Update(target, measured, dt float64) float64 {
	err := target - measured

	p := pid.gain.Kp * err

	pid.integral += err * dt
	i := pid.gain.Ki * pid.integral

	// No derivative on the first step after construction or Reset.
	var d float64
	if pid.initialized && dt > 0 {
		d = pid.gain.Kd * (err - pid.prevError) / dt
	}

	pid.prevError = err
	pid.initialized = true

	return p + i + d
}

// Diagnostics returns current PID state for logging/debugging
func (pid *PIDController) Diagnostics() PIDDiagnostics {
	return PIDDiagnostics{
		Error:    pid.prevError,
		Integral: pid.integral,
		P:        pid.gain.Kp * pid.prevError,
		I:        pid.gain.Ki * pid.integral,
	}
}

// PIDDiagnostics contains PID internal state for monitoring
type PIDDiagnostics struct {
	Error    float64
	Integral float64
	P        float64
	I        float64
}

func (pid *PIDController) Gain() PIDGain { return pid.gain }

func (pid *PIDController) Integral() float64 { return pid.integral }
