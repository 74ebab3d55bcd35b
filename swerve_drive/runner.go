package main

import (
	"context"
	"fmt"
	"io"
	"math/cmplx"
	"sync/atomic"
	"time"

	"go.einride.tech/can"

	"swerve-core/swerve_drive/devices"
	"swerve-core/swerve_drive/encoder"
	"swerve-core/swerve_drive/kinematics"
	control "swerve-core/swerve_drive/module_control"
	"swerve-core/swerve_drive/odometry"
	"swerve-core/utils"
)

const inboxSize = 256

type RunnerConfig struct {
	ConfigPath string
	MapPath    string

	// Overrides for the values in the config file. Empty keeps the file value.
	BusA       string
	BusB       string
	SerialPort string

	ResetEncoders bool
}

// endpoints are the hardware handles a Runner drives. Readers may be nil when
// frames are pushed into the inboxes directly.
type endpoints struct {
	readerA, readerB utils.CANReader
	writerA, writerB utils.CANWriter
	port             encoder.Port
	portCloser       io.Closer
}

// Runner owns every piece of controller state and executes the cooperative
// loop. Only the receive goroutines run concurrently; they hand frames over
// through the inboxes and never touch the state.
type Runner struct {
	cfg   Config
	log   *utils.Logger
	clock utils.Clock
	ep    endpoints

	inboxA chan can.Frame
	inboxB chan can.Frame

	link     *encoder.Link
	encoders []encoder.State

	controller *devices.Controller
	sensors    *devices.SensorBoard
	drive      *devices.DriveFeedback
	driveCmd   *devices.Commander
	steerCmd   *devices.Commander

	resolver  kinematics.Resolver
	odom      *odometry.Estimator
	velocity  odometry.VelocityTracker
	modules   [kinematics.NumModules]*control.Module
	heartbeat *control.Heartbeat
	linkState control.LinkState
	gate      *utils.Gate

	polled  int
	cycles  uint64
	txErrs  uint64
	dropped atomic.Uint64
}

func NewRunner(ctx context.Context, rc RunnerConfig, log *utils.Logger) (*Runner, error) {
	cfg, err := LoadConfig(rc.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rc.BusA != "" {
		cfg.Bus.A = rc.BusA
	}
	if rc.BusB != "" {
		cfg.Bus.B = rc.BusB
	}
	if rc.SerialPort != "" {
		cfg.Encoder.Port = rc.SerialPort
	}

	cmap, err := utils.LoadCANMap(rc.MapPath)
	if err != nil {
		return nil, fmt.Errorf("load can map: %w", err)
	}

	ep, err := openEndpoints(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r, err := newRunner(cfg, cmap, ep, utils.RealClock{}, log)
	if err != nil {
		ep.close()
		return nil, err
	}

	if rc.ResetEncoders {
		for i := range r.encoders {
			if err := r.link.RequestReset(&r.encoders[i]); err != nil {
				r.Close()
				return nil, err
			}
		}
	}
	return r, nil
}

func openEndpoints(ctx context.Context, cfg Config) (endpoints, error) {
	var ep endpoints
	fail := func(err error) (endpoints, error) {
		ep.close()
		return endpoints{}, err
	}

	busA, err := utils.DialSocketCAN(ctx, cfg.Bus.A)
	if err != nil {
		return fail(err)
	}
	ep.readerA, ep.writerA = busA, busA
	busB, err := utils.DialSocketCAN(ctx, cfg.Bus.B)
	if err != nil {
		return fail(err)
	}
	ep.readerB, ep.writerB = busB, busB

	port, err := utils.OpenSerialPort(cfg.Encoder.Port, cfg.Encoder.Serial)
	if err != nil {
		return fail(err)
	}
	ep.port, ep.portCloser = port, port
	return ep, nil
}

func (ep endpoints) close() {
	for _, c := range []io.Closer{ep.readerA, ep.readerB, ep.writerA, ep.writerB, ep.portCloser} {
		if c != nil {
			_ = c.Close()
		}
	}
}

func newRunner(cfg Config, cmap *utils.CANMap, ep endpoints, clock utils.Clock, log *utils.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parity, err := encoder.ParseParity(cfg.Encoder.Checksum)
	if err != nil {
		return nil, err
	}

	controller, err := devices.NewController(cmap, cfg.Controller)
	if err != nil {
		return nil, err
	}
	sensors, err := devices.NewSensorBoard(cmap)
	if err != nil {
		return nil, err
	}
	drive, err := devices.NewDriveFeedback(cmap)
	if err != nil {
		return nil, err
	}
	driveCmd, err := devices.NewDriveCommander(cmap)
	if err != nil {
		return nil, err
	}
	steerCmd, err := devices.NewSteerCommander(cmap)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:        cfg,
		log:        log,
		clock:      clock,
		ep:         ep,
		inboxA:     make(chan can.Frame, inboxSize),
		inboxB:     make(chan can.Frame, inboxSize),
		link:       encoder.NewLink(ep.port, encoder.LinkConfig{Timeout: cfg.encoderTimeout(), Parity: parity, Clock: clock}, log),
		encoders:   encoder.NewStates(cfg.encoderAddresses()),
		controller: controller,
		sensors:    sensors,
		drive:      drive,
		driveCmd:   driveCmd,
		steerCmd:   steerCmd,
		resolver: kinematics.Resolver{
			TicksPerRev: cfg.Kinematics.SteerTicksPerRev,
			MaxRPM:      cfg.Kinematics.MaxRPM,
		},
		odom:      odometry.NewEstimator(),
		heartbeat: control.NewHeartbeat(cfg.heartbeatTimeout()),
		linkState: control.Stale,
		gate:      utils.NewGate(cfg.cycle()),
	}
	for i := range r.modules {
		r.modules[i] = control.NewModule(cfg.Module)
	}
	return r, nil
}

func (r *Runner) Close() {
	r.ep.close()
}

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting: bus_a=%s bus_b=%s encoders=%s cycle=%s heartbeat_timeout=%s checksum=%s",
		r.cfg.Bus.A, r.cfg.Bus.B, r.cfg.Encoder.Port, r.cfg.cycle(), r.cfg.heartbeatTimeout(), r.cfg.Encoder.Checksum)

	if r.ep.readerA != nil {
		go r.receiveLoop(ctx, "a", r.ep.readerA, r.inboxA)
	}
	if r.ep.readerB != nil {
		go r.receiveLoop(ctx, "b", r.ep.readerB, r.inboxB)
	}

	if err := r.waitForSources(ctx); err != nil {
		return err
	}

	r.gate.Fire(r.clock.Now())
	for {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Context canceled; stopping control loop")
			enc := r.link.Stats()
			r.log.Info("Completed. cycles=%d rx_dropped=%d tx_errors=%d encoder_polls=%d encoder_timeouts=%d encoder_checksum_errors=%d",
				r.cycles, r.dropped.Load(), r.txErrs, enc.Polls, enc.Timeouts, enc.Checksums)
			return err
		}
		r.iterate(ctx)
	}
}

// iterate is one pass of the cooperative loop: service both buses, poll every
// encoder, then run the control cycle if the gate is due.
func (r *Runner) iterate(ctx context.Context) {
	now := r.clock.Now()
	r.drain(r.inboxA, r.handleBusA)
	r.drain(r.inboxB, func(f can.Frame) { r.handleBusB(f, now) })

	r.polled = r.link.PollAll(r.encoders)

	if dt, ok := r.gate.Fire(r.clock.Now()); ok {
		r.cycle(ctx, now, dt)
	}
}

// drain handles the frames queued when it is called, without waiting.
func (r *Runner) drain(inbox chan can.Frame, handle func(can.Frame)) {
	for n := len(inbox); n > 0; n-- {
		select {
		case f := <-inbox:
			handle(f)
		default:
			return
		}
	}
}

func (r *Runner) handleBusA(f can.Frame) {
	if ok, err := r.sensors.Read(f); ok {
		if err != nil {
			r.log.Warn("RX a id=0x%X: %v", f.ID, err)
		}
		return
	}
	if ok, err := r.controller.Read(f); ok && err != nil {
		r.log.Warn("RX a id=0x%X: %v", f.ID, err)
	}
}

func (r *Runner) handleBusB(f can.Frame, now time.Time) {
	hb, err := r.drive.Read(f)
	if err != nil {
		r.log.Warn("RX b id=0x%X: %v", f.ID, err)
	}
	if hb {
		r.heartbeat.Beat(now)
	}
}

// cycle runs kinematics, odometry and the module loops, then transmits. dt
// is the measured interval since the previous cycle.
func (r *Runner) cycle(ctx context.Context, now time.Time, dt time.Duration) {
	heading := r.odom.Pose().Heading + r.cfg.Kinematics.HeadingOffsetRad
	commands := kinematics.ComputeWheelCommands(r.controller.Velocity(), heading)
	for i, c := range commands {
		r.modules[i].SetTarget(r.resolver.Resolve(cmplx.Phase(c), cmplx.Abs(c), -r.encoders[i].Position))
	}

	state := r.heartbeat.State(now)
	if state != r.linkState {
		if state == control.Live {
			r.log.Info("Drive telemetry live")
		} else {
			r.log.Warn("Drive telemetry stale for %s; outputs decaying", r.heartbeat.Age(now))
		}
		r.linkState = state
	}

	if state == control.Live {
		var disp [kinematics.NumModules]complex128
		for i := range disp {
			disp[i] = odometry.Displacement(float64(r.drive.RPM(i)), dt,
				r.cfg.Odometry.DriveMMPerRev, r.cfg.Kinematics.SteerTicksPerRev, r.encoders[i].Position)
		}
		r.odom.Integrate(disp)
	}
	r.velocity.Update(r.odom.Pose(), dt)

	var driveOut, steerOut [kinematics.NumModules]int16
	for i, m := range r.modules {
		driveOut[i], steerOut[i] = m.Update(state, r.drive.RPM(i), r.encoders[i].Position, dt.Seconds())
	}
	r.cycles++

	r.log.Trace("Encoders answered %d/%d on the last poll", r.polled, len(r.encoders))
	if r.log.Enabled(utils.INFO) {
		r.log.Info("%s", r.Snapshot())
	}
	if r.log.Enabled(utils.DEBUG) {
		r.log.Debug("%s", r.diagnostics())
	}

	r.transmit(ctx, "a", r.ep.writerA, r.steerCmd, steerOut)
	r.transmit(ctx, "b", r.ep.writerB, r.driveCmd, driveOut)
}

// transmit failures are logged and the loop carries on; the actuators time
// out on their own if commands stop arriving.
func (r *Runner) transmit(ctx context.Context, bus string, w utils.CANWriter, c *devices.Commander, cmds [kinematics.NumModules]int16) {
	frame, err := c.Frame(cmds)
	if err != nil {
		r.txErrs++
		r.log.Error("Encode failed on bus %s: %v", bus, err)
		return
	}
	if err := w.WriteFrame(ctx, frame); err != nil {
		r.txErrs++
		r.log.Error("Transmit failed on bus %s id=0x%X: %v", bus, frame.ID, err)
		return
	}
	r.log.Trace("TX %s id=0x%X len=%d data=% X", bus, frame.ID, frame.Length, frame.Data[:frame.Length])
}

// receiveLoop forwards frames from one bus into its inbox. Frames are dropped
// when the loop falls behind.
func (r *Runner) receiveLoop(ctx context.Context, bus string, reader utils.CANReader, inbox chan<- can.Frame) {
	r.log.Debug("RX %s loop started", bus)
	defer r.log.Debug("RX %s loop stopped", bus)

	for {
		frame, err := reader.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Error("RX %s error: %v", bus, err)
			r.clock.Sleep(r.cfg.cycle())
			continue
		}

		select {
		case inbox <- frame:
		default:
			r.dropped.Add(1)
			r.log.Trace("RX %s inbox full; dropped id=0x%X", bus, frame.ID)
		}
		r.log.Trace("RX %s id=0x%X len=%d data=% X", bus, frame.ID, frame.Length, frame.Data[:frame.Length])
	}
}
