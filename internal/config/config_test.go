package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/smazurov/segpanel/internal/logging"
	"github.com/spf13/cobra"
)

// testOptions mirrors the daemon options layout.
type testOptions struct {
	Config string `help:"Config file path"`

	PanelDigits  int           `toml:"panel.digits" env:"PANEL_DIGITS"`
	PanelPinOE   int           `toml:"panel.pin_oe" env:"PANEL_PIN_OE"`
	GPIOBackend  string        `toml:"gpio.backend" env:"GPIO_BACKEND"`
	GPIOSettle   time.Duration `toml:"gpio.export_settle" env:"GPIO_EXPORT_SETTLE"`
	ClockEnabled bool          `toml:"clock.enabled" env:"CLOCK_ENABLED"`
	CORSOrigins  []string      `toml:"server.cors_origins" env:"SERVER_CORS_ORIGINS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[panel]
digits = 4
pin_oe = 17

[gpio]
backend = "periph"
export_settle = "25ms"

[clock]
enabled = true

[server]
cors_origins = ["http://a", "http://b"]
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.PanelDigits != 4 || opts.PanelPinOE != 17 {
		t.Errorf("panel = %d/%d, want 4/17", opts.PanelDigits, opts.PanelPinOE)
	}
	if opts.GPIOBackend != "periph" {
		t.Errorf("GPIOBackend = %q, want periph", opts.GPIOBackend)
	}
	if opts.GPIOSettle != 25*time.Millisecond {
		t.Errorf("GPIOSettle = %v, want 25ms", opts.GPIOSettle)
	}
	if !opts.ClockEnabled {
		t.Error("ClockEnabled = false, want true")
	}
	if !reflect.DeepEqual(opts.CORSOrigins, []string{"http://a", "http://b"}) {
		t.Errorf("CORSOrigins = %v", opts.CORSOrigins)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("SEGPANEL_PANEL_DIGITS", "6")
	t.Setenv("SEGPANEL_GPIO_EXPORT_SETTLE", "1s")
	t.Setenv("SEGPANEL_CLOCK_ENABLED", "true")
	t.Setenv("SEGPANEL_SERVER_CORS_ORIGINS", "http://a, http://b")

	opts := &testOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.PanelDigits != 6 {
		t.Errorf("PanelDigits = %d, want 6", opts.PanelDigits)
	}
	if opts.GPIOSettle != time.Second {
		t.Errorf("GPIOSettle = %v, want 1s", opts.GPIOSettle)
	}
	if !opts.ClockEnabled {
		t.Error("ClockEnabled = false, want true")
	}
	if !reflect.DeepEqual(opts.CORSOrigins, []string{"http://a", "http://b"}) {
		t.Errorf("CORSOrigins = %v", opts.CORSOrigins)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeConfig(t, "[panel]\ndigits = 2\npin_oe = 18\n")
	t.Setenv("SEGPANEL_PANEL_DIGITS", "3")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.PanelDigits != 3 {
		t.Errorf("PanelDigits = %d, want env value 3", opts.PanelDigits)
	}
	if opts.PanelPinOE != 18 {
		t.Errorf("PanelPinOE = %d, want file value 18", opts.PanelPinOE)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	path := writeConfig(t, "[panel]\ndigits = 2\n[gpio]\nbackend = \"sysfs\"\n")
	t.Setenv("SEGPANEL_PANEL_DIGITS", "3")
	t.Setenv("SEGPANEL_GPIO_BACKEND", "sysfs")

	opts := &testOptions{Config: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&opts.PanelDigits, "panel-digits", 0, "")
	cmd.Flags().StringVar(&opts.GPIOBackend, "gpio-backend", "", "")
	if err := cmd.Flags().Parse([]string{"--panel-digits=8", "--gpio-backend=periph"}); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.PanelDigits != 8 {
		t.Errorf("PanelDigits = %d, want CLI value 8", opts.PanelDigits)
	}
	if opts.GPIOBackend != "periph" {
		t.Errorf("GPIOBackend = %q, want CLI value periph", opts.GPIOBackend)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "absent.toml"), PanelDigits: 2}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if opts.PanelDigits != 2 {
		t.Errorf("PanelDigits = %d, want default 2", opts.PanelDigits)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[panel\ndigits = ")
	if err := LoadConfig(&testOptions{Config: path}, nil); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestLoadConfigBadValues(t *testing.T) {
	t.Run("bad duration in file", func(t *testing.T) {
		path := writeConfig(t, "[gpio]\nexport_settle = \"soon\"\n")
		if err := LoadConfig(&testOptions{Config: path}, nil); err == nil {
			t.Error("expected error for bad duration")
		}
	})
	t.Run("bad integer in env", func(t *testing.T) {
		t.Setenv("SEGPANEL_PANEL_DIGITS", "two")
		if err := LoadConfig(&testOptions{}, nil); err == nil {
			t.Error("expected error for bad integer")
		}
	})
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":          "port",
		"LoggingLevel":  "logging-level",
		"PanelPinOE":    "panel-pin-oe",
		"GPIOBackend":   "gpio-backend",
		"PanelPinData":  "panel-pin-data",
		"ClockInterval": "clock-interval",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"panel": map[string]any{"digits": int64(2)},
		"flat":  "x",
	}
	if got := getNestedValue(data, "panel.digits"); got != int64(2) {
		t.Errorf("panel.digits = %v", got)
	}
	if got := getNestedValue(data, "flat"); got != "x" {
		t.Errorf("flat = %v", got)
	}
	if got := getNestedValue(data, "flat.deeper"); got != nil {
		t.Errorf("flat.deeper = %v, want nil", got)
	}
	if got := getNestedValue(data, "missing.key"); got != nil {
		t.Errorf("missing.key = %v, want nil", got)
	}
}

func TestLoadLoggingModuleLevels(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
gpio = "debug"
panel = "error"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("level/format = %q/%q", cfg.Level, cfg.Format)
	}
	want := map[string]string{"gpio": "debug", "panel": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	defaults := LoadLoggingConfig("")
	if defaults.Level != "info" || defaults.Format != "text" {
		t.Errorf("defaults = %+v", defaults)
	}
}

// daemonOptions carries the keys the reload path turns into a Runtime.
type daemonOptions struct {
	Config        string
	PanelDigits   int    `toml:"panel.digits" env:"PANEL_DIGITS"`
	ClockEnabled  bool   `toml:"clock.enabled" env:"CLOCK_ENABLED"`
	ClockInterval string `toml:"clock.interval" env:"CLOCK_INTERVAL"`
	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
}

func (o daemonOptions) runtime() (Runtime, error) {
	clock, err := ParseClock(o.ClockEnabled, o.ClockInterval)
	if err != nil {
		return Runtime{}, err
	}
	return Runtime{
		Panel:   PanelSection{Digits: o.PanelDigits},
		Clock:   clock,
		Logging: logging.Config{Level: o.LoggingLevel},
	}, nil
}

// daemonDefaults are the flag defaults before any file is read.
func daemonDefaults() daemonOptions {
	return daemonOptions{PanelDigits: 2, ClockEnabled: true, ClockInterval: "5s", LoggingLevel: "info"}
}

func testReloader() func(string) (Runtime, error) {
	return Reloader(daemonDefaults(), nil, daemonOptions.runtime)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		interval string
		want     time.Duration
		wantErr  bool
	}{
		{"empty uses default", true, "", DefaultClockInterval, false},
		{"explicit", false, "30s", 30 * time.Second, false},
		{"garbage", true, "later", 0, true},
		{"negative", true, "-1s", 0, true},
		{"zero", true, "0s", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseClock(tt.enabled, tt.interval)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (c.Enabled != tt.enabled || c.Interval != tt.want) {
				t.Errorf("ParseClock() = %+v, want enabled=%v interval=%v", c, tt.enabled, tt.want)
			}
		})
	}
}

func TestReloaderKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, "[panel]\ndigits = 4\n")

	rt, err := testReloader()(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if rt.Panel.Digits != 4 {
		t.Errorf("Panel.Digits = %d, want 4", rt.Panel.Digits)
	}
	if !rt.Clock.Enabled || rt.Clock.Interval != DefaultClockInterval {
		t.Errorf("Clock = %+v, want enabled every %v", rt.Clock, DefaultClockInterval)
	}
	if rt.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", rt.Logging.Level)
	}
}

func TestReloaderRevertsRemovedKeys(t *testing.T) {
	reload := testReloader()
	path := writeConfig(t, "[clock]\nenabled = false\ninterval = \"1m\"\n")

	rt, err := reload(path)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Clock.Enabled || rt.Clock.Interval != time.Minute {
		t.Fatalf("Clock = %+v, want disabled every 1m", rt.Clock)
	}

	if err := os.WriteFile(path, []byte("[panel]\ndigits = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rt, err = reload(path)
	if err != nil {
		t.Fatal(err)
	}
	if !rt.Clock.Enabled || rt.Clock.Interval != DefaultClockInterval {
		t.Errorf("Clock = %+v, want the defaults back", rt.Clock)
	}
}

func TestReloaderEnvWinsOverFile(t *testing.T) {
	t.Setenv("SEGPANEL_CLOCK_ENABLED", "false")
	path := writeConfig(t, "[clock]\nenabled = true\ninterval = \"10s\"\n")

	rt, err := testReloader()(path)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Clock.Enabled {
		t.Error("Clock.Enabled = true, want the env value false")
	}
	if rt.Clock.Interval != 10*time.Second {
		t.Errorf("Interval = %v, want 10s from the file", rt.Clock.Interval)
	}
}

func TestReloaderFlagWinsOverFile(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("clock-interval", "5s", "")
	if err := cmd.Flags().Set("clock-interval", "30s"); err != nil {
		t.Fatal(err)
	}
	base := daemonDefaults()
	base.ClockInterval = "30s"

	path := writeConfig(t, "[clock]\ninterval = \"1m\"\n")
	rt, err := Reloader(base, cmd, daemonOptions.runtime)(path)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Clock.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want the flag value 30s", rt.Clock.Interval)
	}
}

func TestReloaderErrors(t *testing.T) {
	reload := testReloader()
	if _, err := reload(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("reload of a missing file should fail")
	}
	if _, err := reload(writeConfig(t, "[clock]\ninterval = \"whenever\"\n")); err == nil {
		t.Error("reload with a bad interval should fail")
	}
	if _, err := reload(writeConfig(t, "[clock\n")); err == nil {
		t.Error("reload of invalid TOML should fail")
	}
}

func TestRuntimeNeedsRestart(t *testing.T) {
	base := Runtime{Panel: PanelSection{Digits: 2, PinOE: 18}, Clock: ClockSection{Interval: time.Second}}

	clockOnly := base
	clockOnly.Clock = ClockSection{Enabled: true, Interval: time.Minute}
	if clockOnly.NeedsRestart(base) {
		t.Error("clock change should not need a restart")
	}

	pins := base
	pins.Panel.PinOE = 4
	if !pins.NeedsRestart(base) {
		t.Error("pin change should need a restart")
	}
}
