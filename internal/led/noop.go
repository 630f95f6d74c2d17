package led

import (
	"log/slog"
	"sync"
)

// request is what a caller last asked of one LED type.
type request struct {
	enabled bool
	pattern string
}

// noop stands in on boards without a usable LED. It keeps the last request
// per LED type and only logs when that changes, since the Manager repeats
// the status on every panel transition.
type noop struct {
	logger *slog.Logger

	mu   sync.Mutex
	last map[string]request
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger, last: make(map[string]request)}
}

func (n *noop) Set(ledType string, enabled bool, pattern string) error {
	req := request{enabled: enabled, pattern: pattern}

	n.mu.Lock()
	prev, seen := n.last[ledType]
	n.last[ledType] = req
	n.mu.Unlock()

	if seen && prev == req {
		return nil
	}
	n.logger.Debug("No status LED, request ignored",
		"led_type", ledType,
		"enabled", enabled,
		"pattern", pattern)
	return nil
}

// Available and Patterns return empty, non-nil slices so the API lists [].
func (n *noop) Available() []string {
	return []string{}
}

func (n *noop) Patterns() []string {
	return []string{}
}
