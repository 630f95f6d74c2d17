package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/segpanel/cmd"
	"github.com/smazurov/segpanel/internal/api"
	"github.com/smazurov/segpanel/internal/config"
	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/led"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/metrics/exporters"
	"github.com/smazurov/segpanel/internal/panel"
	"github.com/smazurov/segpanel/internal/systemd"
	"github.com/smazurov/segpanel/internal/updater"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Panel settings
	PanelDigits  int `help:"Number of seven-segment modules in the chain" default:"2" toml:"panel.digits" env:"PANEL_DIGITS"`
	PanelPinOE   int `help:"Output enable GPIO" default:"18" toml:"panel.pin_oe" env:"PANEL_PIN_OE"`
	PanelPinLE   int `help:"Latch enable GPIO" default:"22" toml:"panel.pin_le" env:"PANEL_PIN_LE"`
	PanelPinData int `help:"Serial data GPIO" default:"10" toml:"panel.pin_data" env:"PANEL_PIN_DATA"`
	PanelPinClk  int `help:"Shift clock GPIO" default:"11" toml:"panel.pin_clk" env:"PANEL_PIN_CLK"`

	// GPIO settings
	GPIOBackend      string `help:"GPIO backend (sysfs, periph)" default:"sysfs" toml:"gpio.backend" env:"GPIO_BACKEND"`
	GPIOSysfsRoot    string `help:"sysfs GPIO control directory" default:"/sys/class/gpio" toml:"gpio.sysfs_root" env:"GPIO_SYSFS_ROOT"`
	GPIOExportSettle string `help:"Delay after export before the pin files are used" default:"10ms" toml:"gpio.export_settle" env:"GPIO_EXPORT_SETTLE"`

	// Clock settings
	ClockEnabled  bool   `help:"Show the date and time in a loop" default:"true" toml:"clock.enabled" env:"CLOCK_ENABLED"`
	ClockInterval string `help:"Pause between date/time cycles" default:"5s" toml:"clock.interval" env:"CLOCK_INTERVAL"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8095" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername     string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword     string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`
	AuthPasswordHash string `help:"Basic auth bcrypt hash, overrides the password" toml:"auth.password_hash" env:"AUTH_PASSWORD_HASH"`

	// Observability settings
	ObsPrometheusEnabled bool `help:"Enable Prometheus" default:"true" toml:"obs.prometheus_enabled" env:"OBS_PROMETHEUS_ENABLED"`
	ObsSSEEnabled        bool `help:"Enable SSE" default:"true" toml:"obs.sse_enabled" env:"OBS_SSE_ENABLED"`

	// LED settings
	LEDEnabled bool   `help:"Mirror the panel state on a status LED" default:"false" toml:"led.enabled" env:"LED_ENABLED"`
	LEDName    string `help:"LED under /sys/class/leds, detected from the board when empty" toml:"led.name" env:"LED_NAME"`

	// Systemd settings
	SystemdUnit string `help:"systemd unit for status and restart" default:"segpanel.service" toml:"systemd.unit" env:"SYSTEMD_UNIT"`
	SystemdUser bool   `help:"Use the user service manager" default:"false" toml:"systemd.user" env:"SYSTEMD_USER"`

	// Update settings
	UpdateRepository string `help:"GitHub repository for releases" default:"smazurov/segpanel" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingGPIO    string `help:"GPIO logging level" default:"info" toml:"logging.gpio" env:"LOGGING_GPIO"`
	LoggingPanel   string `help:"Panel logging level" default:"info" toml:"logging.panel" env:"LOGGING_PANEL"`
	LoggingDisplay string `help:"Display service logging level" default:"info" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingClock   string `help:"Clock loop logging level" default:"info" toml:"logging.clock" env:"LOGGING_CLOCK"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingUpdater string `help:"Updater logging level" default:"info" toml:"logging.updater" env:"LOGGING_UPDATER"`
}

func (o *Options) hardware(logger *slog.Logger) cmd.Hardware {
	return cmd.Hardware{
		Digits: o.PanelDigits,
		Pins: panel.Pins{
			OE:    o.PanelPinOE,
			LE:    o.PanelPinLE,
			Data:  o.PanelPinData,
			Clock: o.PanelPinClk,
		},
		Backend:      o.GPIOBackend,
		SysfsRoot:    o.GPIOSysfsRoot,
		ExportSettle: parseDuration(logger, "gpio.export_settle", o.GPIOExportSettle, 10*time.Millisecond),
	}
}

func (o *Options) updaterOptions() updater.Options {
	return updater.Options{
		Repository: o.UpdateRepository,
		Prerelease: o.UpdatePrerelease,
	}
}

func (o *Options) loggingConfig() logging.Config {
	cfg := logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"gpio":    o.LoggingGPIO,
			"panel":   o.LoggingPanel,
			"display": o.LoggingDisplay,
			"clock":   o.LoggingClock,
			"api":     o.LoggingAPI,
			"http":    o.LoggingHTTP,
			"updater": o.LoggingUpdater,
		},
	}
	// Modules without a flag, e.g. logging.config, come from the file only.
	for module, level := range config.LoadLoggingConfig(o.Config).Modules {
		if _, ok := cfg.Modules[module]; !ok {
			cfg.Modules[module] = level
		}
	}
	return cfg
}

// runtime extracts the settings the daemon applies while running.
func (o Options) runtime() (config.Runtime, error) {
	clock, err := config.ParseClock(o.ClockEnabled, o.ClockInterval)
	if err != nil {
		return config.Runtime{}, err
	}
	return config.Runtime{
		Panel: config.PanelSection{
			Digits:  o.PanelDigits,
			PinOE:   o.PanelPinOE,
			PinLE:   o.PanelPinLE,
			PinData: o.PanelPinData,
			PinClk:  o.PanelPinClk,
		},
		GPIO: config.GPIOSection{
			Backend:   o.GPIOBackend,
			SysfsRoot: o.GPIOSysfsRoot,
		},
		Clock:   clock,
		Logging: o.loggingConfig(),
	}, nil
}

func parseDuration(logger *slog.Logger, key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		logger.Warn("Invalid duration, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}

// clockRunner owns the background date/time loop so a config reload can
// restart it with new settings.
type clockRunner struct {
	svc    *display.Service
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *clockRunner) restart(enabled bool, interval time.Duration) {
	c.stop()
	if !enabled {
		c.logger.Info("Clock loop disabled")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go func() {
		defer close(done)
		c.svc.RunClock(ctx, interval)
	}()
	c.logger.Info("Clock loop started", "interval", interval)
}

// stop cancels the loop and waits for the running cycle to finish.
func (c *clockRunner) stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func main() {
	var hardware cmd.Hardware
	var updateOptions updater.Options

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Flag values and defaults only; reloads resolve the file against it.
		base := *opts

		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Create event bus for in-process event handling
		eventBus := events.New()

		logging.Initialize(opts.loggingConfig())
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEvent(entry))
		})

		logger := logging.GetLogger("main")
		hardware = opts.hardware(logger)
		updateOptions = opts.updaterOptions()
		current, rtErr := opts.runtime()
		if rtErr != nil {
			logger.Warn("Invalid clock interval, using default", "error", rtErr, "default", config.DefaultClockInterval)
			fallback := *opts
			fallback.ClockInterval = ""
			current, _ = fallback.runtime()
		}

		p, err := cmd.NewPanel(hardware, logging.GetLogger("panel"))
		if err != nil {
			logger.Error("Invalid panel configuration", "error", err)
			os.Exit(1)
		}
		displayService := display.NewService(p, eventBus, logging.GetLogger("display"))
		clock := &clockRunner{svc: displayService, logger: logging.GetLogger("clock")}

		// Initialize LED control if enabled
		var ledManager *led.Manager
		var ledController led.Controller
		if opts.LEDEnabled {
			logger.Info("LED control enabled, initializing")
			ledController = led.New(led.Config{Enabled: true, Name: opts.LEDName}, logger)
			ledManager = led.NewManager(ledController, eventBus, logger)
		}

		var sseExporter *exporters.SSEExporter
		if opts.ObsSSEEnabled {
			sseExporter = exporters.NewSSEExporter(eventBus)
		}

		updateService, err := updater.NewService(&updateOptions)
		if err != nil {
			logger.Warn("Update service unavailable", "error", err)
		}

		apiOpts := &api.Options{
			AuthUsername:     opts.AuthUsername,
			AuthPassword:     opts.AuthPassword,
			AuthPasswordHash: opts.AuthPasswordHash,
			Panel:            displayService,
			EventBus:         eventBus,
			UpdateService:    updateService,
		}
		if opts.ObsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler(logging.GetLogger("metrics"))
		}
		if ledController != nil {
			apiOpts.LEDController = ledController
		}

		// OnStop may run while OnStart is still assembling the daemon.
		var lifecycle sync.Mutex
		var systemdManager *systemd.Manager
		var watcher *config.Watcher[config.Runtime]
		var server *api.Server
		rootCtx, cancelRoot := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			lifecycle.Lock()
			if ledManager != nil {
				ledManager.Start()
			}

			// The API stays up when the panel cannot be acquired so the
			// failure can be inspected and retried after a restart.
			panelReady := true
			if startErr := displayService.Start(); startErr != nil {
				logger.Error("Failed to initialize panel", "error", startErr)
				panelReady = false
			}
			if panelReady {
				clock.restart(current.Clock.Enabled, current.Clock.Interval)
			}

			if sseExporter != nil {
				sseExporter.Start(rootCtx)
			}

			if manager, dbusErr := systemd.NewManager(rootCtx, opts.SystemdUnit, opts.SystemdUser); dbusErr != nil {
				logger.Warn("systemd D-Bus unavailable, service routes disabled", "error", dbusErr)
			} else {
				systemdManager = manager
				apiOpts.SystemdManager = manager
			}
			server = api.NewServer(apiOpts)

			watcher = config.NewConfigWatcher(
				opts.Config,
				config.Reloader(base, cli.Root(), Options.runtime),
				logging.GetLogger("config"),
			)
			watcher.OnReload(func(rt config.Runtime) {
				logging.SetLevels(rt.Logging.Level, rt.Logging.Modules)
				if panelReady && rt.Clock != current.Clock {
					clock.restart(rt.Clock.Enabled, rt.Clock.Interval)
				}
				if rt.NeedsRestart(current) {
					logger.Warn("Panel or GPIO settings changed, restart segpanel to apply them")
				}
				current = rt
			})
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not started", "error", watchErr)
			}

			if _, notifyErr := systemd.Notify(systemd.Ready); notifyErr != nil {
				logger.Warn("Failed to notify systemd", "error", notifyErr)
			}

			lifecycle.Unlock()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			lifecycle.Lock()
			defer lifecycle.Unlock()

			logger.Info("Shutting down server")
			if _, notifyErr := systemd.Notify(systemd.Stopping); notifyErr != nil {
				logger.Warn("Failed to notify systemd", "error", notifyErr)
			}

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
			if server != nil {
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}

			// Let the running date/time cycle finish before the pins go.
			clock.stop()
			if displayService.Status().State == panel.StateInitialized.String() {
				if stopErr := displayService.Stop(); stopErr != nil {
					logger.Error("Error releasing panel", "error", stopErr)
				}
			}

			if sseExporter != nil {
				sseExporter.Stop()
			}
			if ledManager != nil {
				ledManager.Stop()
			}
			if systemdManager != nil {
				systemdManager.Close()
			}
			cancelRoot()
		})
	})

	cli.Root().AddCommand(cmd.CreateShowCmd(func() cmd.Hardware { return hardware }))
	cli.Root().AddCommand(cmd.CreateFadeCmd(func() cmd.Hardware { return hardware }))
	cli.Root().AddCommand(cmd.CreateClockCmd(func() cmd.Hardware { return hardware }))
	cli.Root().AddCommand(cmd.CreateUpdateCmd(func() updater.Options { return updateOptions }))

	// Run the CLI
	cli.Run()
}
