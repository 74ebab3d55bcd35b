package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"swerve-core/utils"
)

func main() {
	var (
		cfgPath  = flag.String("config", "config/swerve.json", "Tuning JSON file")
		mapPath  = flag.String("map", utils.DefaultCANMapPath, "Path to can_map.csv")
		busA     = flag.String("bus-a", "", "SocketCAN interface for steer, sensors and controller (overrides config)")
		busB     = flag.String("bus-b", "", "SocketCAN interface for drive controllers (overrides config)")
		serial   = flag.String("serial", "", "Encoder RS485 device (overrides config)")
		reset    = flag.Bool("reset-encoders", false, "Re-zero every encoder before starting")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error|critical")
		logFile  = flag.String("logfile", "swerve_drive.log", "Log file path")
	)
	flag.Parse()

	log, err := utils.NewFileLogger(*logFile, utils.ParseLogLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + *logFile + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	rc := RunnerConfig{
		ConfigPath:    *cfgPath,
		MapPath:       *mapPath,
		BusA:          *busA,
		BusB:          *busB,
		SerialPort:    *serial,
		ResetEncoders: *reset,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(ctx, rc, log)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}
