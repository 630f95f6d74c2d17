package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/smazurov/segpanel/internal/logging"
	"github.com/spf13/cobra"
)

// Runtime is the part of the configuration the daemon reacts to while
// running.
type Runtime struct {
	Panel   PanelSection
	GPIO    GPIOSection
	Clock   ClockSection
	Logging logging.Config
}

// PanelSection mirrors the panel.* keys.
type PanelSection struct {
	Digits  int
	PinOE   int
	PinLE   int
	PinData int
	PinClk  int
}

// GPIOSection mirrors the gpio.* keys.
type GPIOSection struct {
	Backend   string
	SysfsRoot string
}

// ClockSection mirrors the clock.* keys.
type ClockSection struct {
	Enabled  bool
	Interval time.Duration
}

// DefaultClockInterval applies when clock.interval is empty.
const DefaultClockInterval = 5 * time.Second

// ParseClock validates the clock settings as they appear in the options.
func ParseClock(enabled bool, interval string) (ClockSection, error) {
	c := ClockSection{Enabled: enabled, Interval: DefaultClockInterval}
	if interval == "" {
		return c, nil
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return ClockSection{}, fmt.Errorf("clock.interval: %w", err)
	}
	if d <= 0 {
		return ClockSection{}, fmt.Errorf("clock.interval must be positive, got %s", d)
	}
	c.Interval = d
	return c, nil
}

// NeedsRestart reports whether the hardware description differs between two
// snapshots. Those settings only take effect when the panel is rebuilt.
func (r Runtime) NeedsRestart(prev Runtime) bool {
	return r.Panel != prev.Panel || r.GPIO != prev.GPIO
}

// Reloader returns a Watcher loader that resolves a fresh copy of base each
// time the file changes, with the precedence of LoadConfig: flags set on cmd,
// then environment, then the file, then whatever base holds. base must be
// captured before the first LoadConfig so it carries only flag values and
// defaults. convert turns the resolved options into a Runtime.
func Reloader[T any](base T, cmd *cobra.Command, convert func(T) (Runtime, error)) func(path string) (Runtime, error) {
	return func(path string) (Runtime, error) {
		if _, err := os.Stat(path); err != nil {
			return Runtime{}, err
		}

		next := base
		if f := reflect.ValueOf(&next).Elem().FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String {
			f.SetString(path)
		}
		if err := LoadConfig(&next, cmd); err != nil {
			return Runtime{}, err
		}
		return convert(next)
	}
}
