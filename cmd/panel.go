// Package cmd holds the one-shot subcommands that drive the panel directly,
// without the HTTP daemon.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/panel"
)

// GPIO backends accepted by gpio.backend.
const (
	BackendSysfs  = "sysfs"
	BackendPeriph = "periph"
)

// Hardware is the resolved panel and GPIO configuration.
type Hardware struct {
	Digits       int
	Pins         panel.Pins
	Backend      string
	SysfsRoot    string
	ExportSettle time.Duration
}

// HardwareFunc returns the hardware settings once flags and the config file
// have been resolved. Subcommands call it when they run.
type HardwareFunc func() Hardware

// NewPanel builds a panel for hw. No hardware is touched until Init.
func NewPanel(hw Hardware, logger *slog.Logger, opts ...panel.Option) (*panel.Panel, error) {
	var factory panel.LineFactory
	switch hw.Backend {
	case "", BackendSysfs:
		factory = panel.SysfsLines(hw.SysfsRoot, hw.ExportSettle)
	case BackendPeriph:
		factory = panel.PeriphLines()
	default:
		return nil, fmt.Errorf("unknown gpio backend %q (want %s or %s)", hw.Backend, BackendSysfs, BackendPeriph)
	}

	all := append([]panel.Option{
		panel.WithLineFactory(factory),
		panel.WithLogger(logger),
	}, opts...)
	return panel.New(hw.Digits, hw.Pins, all...), nil
}

// withPanel starts a display service for one subcommand, runs fn and stops
// the service again. Any failure is logged and the process exits with 1.
func withPanel(hw Hardware, name string, fn func(svc *display.Service) error) {
	logger := logging.GetLogger(name)
	if err := runWithPanel(hw, logger, fn); err != nil {
		logger.Error("Command failed", "command", name, "error", err)
		os.Exit(1)
	}
}

func runWithPanel(hw Hardware, logger *slog.Logger, fn func(svc *display.Service) error) error {
	p, err := NewPanel(hw, logging.GetLogger("panel"))
	if err != nil {
		return err
	}
	svc := display.NewService(p, nil, logger)
	if err := svc.Start(); err != nil {
		return err
	}
	defer func() {
		if stopErr := svc.Stop(); stopErr != nil {
			logger.Warn("Failed to release panel", "error", stopErr)
		}
	}()
	return fn(svc)
}
