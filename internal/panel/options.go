package panel

import (
	"log/slog"
	"time"

	"github.com/smazurov/segpanel/internal/gpio"
)

// LineFactory builds one GPIO line. The panel calls it during Init only.
type LineFactory func(number int, direction gpio.Direction, initial gpio.Value) gpio.Line

// Option configures a Panel.
type Option func(*Panel)

// WithLineFactory replaces the sysfs line constructor, e.g. with the periph
// backend or a test double.
func WithLineFactory(f LineFactory) Option {
	return func(p *Panel) {
		p.newLine = f
	}
}

// WithSysfsRoot sets the control-plane directory used by the default factory.
func WithSysfsRoot(root string) Option {
	return func(p *Panel) {
		p.sysfsRoot = root
	}
}

// WithExportSettle sets the post-export delay used by the default factory.
func WithExportSettle(d time.Duration) Option {
	return func(p *Panel) {
		p.exportSettle = d
	}
}

// WithSleep replaces time.Sleep for the fade and date/time timing.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Panel) {
		p.sleep = sleep
	}
}

// WithClock replaces time.Now for DisplayDateTime.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		p.now = now
	}
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		p.logger = logger
	}
}

// WithDateTimePause sets the pause between the date and time groups.
func WithDateTimePause(d time.Duration) Option {
	return func(p *Panel) {
		p.dateTimePause = d
	}
}

// SysfsLines returns the factory for sysfs-backed lines.
func SysfsLines(root string, settle time.Duration) LineFactory {
	return func(number int, direction gpio.Direction, initial gpio.Value) gpio.Line {
		return gpio.New(number, direction, initial, gpio.WithSysfsRoot(root), gpio.WithExportSettle(settle))
	}
}

// PeriphLines returns the factory for periph.io-backed lines.
func PeriphLines() LineFactory {
	return func(number int, direction gpio.Direction, initial gpio.Value) gpio.Line {
		return gpio.NewPeriphLine(number, direction, initial)
	}
}
