package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"swerve-core/swerve_drive/devices"
	"swerve-core/swerve_drive/encoder"
	"swerve-core/swerve_drive/kinematics"
	control "swerve-core/swerve_drive/module_control"
	"swerve-core/utils"
)

// Config is the tuning file. Fields omitted from the JSON keep their
// defaults, so partial files are safe.
type Config struct {
	Bus        BusConfig                `json:"bus"`
	Encoder    EncoderConfig            `json:"encoder"`
	Timing     TimingConfig             `json:"timing"`
	Module     control.ModuleConfig     `json:"module"`
	Kinematics KinematicsConfig         `json:"kinematics"`
	Odometry   OdometryConfig           `json:"odometry"`
	Controller devices.ControllerConfig `json:"controller"`
}

// BusConfig names the SocketCAN interfaces. Bus A carries the steer
// actuators, sensor board and operator input; bus B the drive controllers.
type BusConfig struct {
	A string `json:"a"`
	B string `json:"b"`
}

type EncoderConfig struct {
	Port      string              `json:"port"`
	Serial    utils.SerialOptions `json:"serial"`
	Addresses []int               `json:"addresses"`
	TimeoutMS int                 `json:"timeout_ms"`
	Checksum  string              `json:"checksum"`
}

type TimingConfig struct {
	CycleMS            int `json:"cycle_ms"`
	HeartbeatTimeoutMS int `json:"heartbeat_timeout_ms"`
	StartupPollMS      int `json:"startup_poll_ms"`
}

type KinematicsConfig struct {
	SteerTicksPerRev int     `json:"steer_ticks_per_rev"`
	MaxRPM           float64 `json:"max_rpm"`
	HeadingOffsetRad float64 `json:"heading_offset_rad"`
}

type OdometryConfig struct {
	DriveMMPerRev float64 `json:"drive_mm_per_rev"`
}

func DefaultConfig() Config {
	return Config{
		Bus: BusConfig{A: "can0", B: "can1"},
		Encoder: EncoderConfig{
			Port:      "/dev/ttyUSB0",
			Serial:    utils.SerialOptions{BaudRate: 2000000},
			Addresses: []int{0x50, 0x54, 0x58, 0x5C},
			TimeoutMS: 10,
			Checksum:  "even",
		},
		Timing: TimingConfig{
			CycleMS:            10,
			HeartbeatTimeoutMS: 100,
			StartupPollMS:      5,
		},
		Module: control.DefaultModuleConfig(),
		Kinematics: KinematicsConfig{
			SteerTicksPerRev: encoder.RotationTicks,
			MaxRPM:           9000,
			HeadingOffsetRad: math.Pi / 2,
		},
		Odometry:   OdometryConfig{DriveMMPerRev: 600},
		Controller: devices.DefaultControllerConfig(),
	}
}

// LoadConfig reads a JSON tuning file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("read file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Bus.A == "" || c.Bus.B == "" {
		return fmt.Errorf("bus interfaces must be set (a=%q b=%q)", c.Bus.A, c.Bus.B)
	}
	if len(c.Encoder.Addresses) != kinematics.NumModules {
		return fmt.Errorf("need %d encoder addresses, got %d", kinematics.NumModules, len(c.Encoder.Addresses))
	}
	for _, a := range c.Encoder.Addresses {
		// The reset command goes to address+2, which must also fit a byte.
		if a < 0 || a > 0xFD {
			return fmt.Errorf("encoder address 0x%X out of range", a)
		}
	}
	if _, err := encoder.ParseParity(c.Encoder.Checksum); err != nil {
		return err
	}
	if _, err := c.Encoder.Serial.Normalize(); err != nil {
		return fmt.Errorf("encoder serial: %w", err)
	}
	if c.Encoder.TimeoutMS <= 0 {
		return fmt.Errorf("invalid encoder timeout_ms: %d", c.Encoder.TimeoutMS)
	}
	if c.Timing.CycleMS <= 0 || c.Timing.HeartbeatTimeoutMS <= 0 || c.Timing.StartupPollMS <= 0 {
		return fmt.Errorf("timing values must be positive: %+v", c.Timing)
	}
	if c.Kinematics.SteerTicksPerRev <= 0 || c.Kinematics.SteerTicksPerRev%2 != 0 {
		return fmt.Errorf("steer_ticks_per_rev must be positive and even, got %d", c.Kinematics.SteerTicksPerRev)
	}
	if c.Kinematics.MaxRPM <= 0 {
		return fmt.Errorf("invalid max_rpm: %f", c.Kinematics.MaxRPM)
	}
	if c.Module.MaxDrive <= 0 || c.Module.MaxDrive > control.DriveCommandMax {
		return fmt.Errorf("max_drive must be in (0, %d], got %f", control.DriveCommandMax, c.Module.MaxDrive)
	}
	if c.Module.SteerLimit <= 0 || c.Module.SteerLimit > control.SteerCommandMax {
		return fmt.Errorf("steer_limit must be in (0, %d], got %f", control.SteerCommandMax, c.Module.SteerLimit)
	}
	if c.Odometry.DriveMMPerRev <= 0 {
		return fmt.Errorf("invalid drive_mm_per_rev: %f", c.Odometry.DriveMMPerRev)
	}
	if c.Controller.Deadzone < 0 || c.Controller.Bias < 0 || c.Controller.Bias > 255 {
		return fmt.Errorf("invalid controller shaping: %+v", c.Controller)
	}
	return nil
}

func (c Config) encoderAddresses() []uint8 {
	out := make([]uint8, len(c.Encoder.Addresses))
	for i, a := range c.Encoder.Addresses {
		out[i] = uint8(a)
	}
	return out
}

func (c Config) cycle() time.Duration { return time.Duration(c.Timing.CycleMS) * time.Millisecond }

func (c Config) heartbeatTimeout() time.Duration {
	return time.Duration(c.Timing.HeartbeatTimeoutMS) * time.Millisecond
}

func (c Config) startupPoll() time.Duration {
	return time.Duration(c.Timing.StartupPollMS) * time.Millisecond
}

func (c Config) encoderTimeout() time.Duration {
	return time.Duration(c.Encoder.TimeoutMS) * time.Millisecond
}
