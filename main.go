// Command fona-monitor brings a FONA-class cellular module to a known
// state, reports its identity, and watches for incoming calls.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"

	"github.com/martincalsyn/fona-go/fona"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port the module is connected to")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	deviceConfig, err := fona.NewConfigBuilder().
		WithATTimeout(5 * time.Second).
		WithLogger(logger.With("component", "fona")).
		WithDialer(fona.SerialDialer{
			PortName: config.SerialPort,
			Mode: &serial.Mode{
				BaudRate: config.BaudRate,
				DataBits: 8,
				Parity:   serial.NoParity,
				StopBits: serial.OneStopBit,
			},
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create device config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	device, err := fona.New(ctx, deviceConfig)
	if err != nil {
		logger.Error("Failed to open device", "error", err)
		os.Exit(1)
	}

	if err := device.Reset(ctx); err != nil {
		logger.Error("Failed to reset module", "error", err)
		os.Exit(1)
	}

	if config.SimPIN != "" {
		if err := device.UnlockSIM(ctx, config.SimPIN); err != nil {
			logger.Error("Failed to unlock SIM", "error", err)
			os.Exit(1)
		}
	}

	if imei, err := device.IMEI(ctx); err != nil {
		logger.Warn("Failed to read IMEI", "error", err)
	} else {
		logger.Info("Module identity", "imei", imei)
	}

	if ccid, err := device.CCID(ctx); err != nil {
		logger.Warn("Failed to read CCID", "error", err)
	} else {
		logger.Info("SIM identity", "ccid", ccid)
	}

	if clock, err := device.Clock(ctx); err != nil {
		logger.Warn("Failed to read clock", "error", err)
	} else {
		logger.Info("Module clock", "time", clock)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ts := <-device.Ring():
				logger.Info("Incoming call", "at", ts)
			}
		}
	})

	logger.Info("Watching for incoming calls")
	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("Monitor stopped", "error", err)
	}

	logger.Info("Closing device")
	if err := device.Close(); err != nil {
		logger.Error("Failed to close device", "error", err)
	}
}
