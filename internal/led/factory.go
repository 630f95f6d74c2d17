package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// StatusLED is the LED type the Manager drives.
const StatusLED = "status"

// Config selects the LED. Name overrides board detection.
type Config struct {
	Enabled bool
	Name    string
	Root    string
}

// New returns a controller exposing one StatusLED. It falls back to a no-op
// controller when disabled or when the board is not recognised.
func New(cfg Config, logger *slog.Logger) Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !cfg.Enabled {
		return newNoop(logger)
	}

	root := cfg.Root
	if root == "" {
		root = DefaultSysfsRoot
	}

	name := cfg.Name
	if name == "" {
		model := detectBoard()
		name = ledForBoard(model)
		logger.Info("Detected board for status LED", "board_model", model, "led", name)
	}
	if name == "" {
		logger.Info("No status LED known for this board, using no-op controller")
		return newNoop(logger)
	}
	return newSysfs(root, map[string]string{StatusLED: name})
}

// ledForBoard returns the class device used as status LED on known boards.
func ledForBoard(model string) string {
	switch {
	case strings.Contains(model, "Raspberry Pi"):
		return "ACT"
	case strings.Contains(model, "NanoPC-T6"):
		return "sys_led"
	case strings.Contains(model, "Orange Pi"):
		return "green_led"
	default:
		return ""
	}
}

func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	// The device tree string is NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}
