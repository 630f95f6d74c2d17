// Package led mirrors the panel state on a board status LED.
package led

// Patterns understood by every Controller.
const (
	PatternSolid     = "solid"
	PatternBlink     = "blink"
	PatternHeartbeat = "heartbeat"
)

// Controller abstracts LED hardware control across boards.
type Controller interface {
	// Set switches an LED on or off and optionally changes its pattern.
	// An empty pattern leaves the trigger untouched.
	Set(ledType string, enabled bool, pattern string) error

	// Available returns the LED types this controller drives.
	Available() []string

	// Patterns returns the patterns this controller supports.
	Patterns() []string
}
