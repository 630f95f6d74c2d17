// Package panel drives a chain of seven-segment shift-register modules over
// four GPIO lines: output enable (active low), latch enable, serial data and
// clock.
//
// Bytes are shifted least significant bit first and the first byte shifted
// ends up in the module furthest from the controller, so a number is sent
// left to right and then latched. A Panel is single-threaded and blocking;
// callers sharing one must serialise access themselves.
package panel

import (
	"log/slog"
	"time"

	"github.com/smazurov/segpanel/internal/gpio"
)

// Pins assigns the four control lines.
type Pins struct {
	OE    int `json:"oe" doc:"Output enable line (active low)" example:"18"`
	LE    int `json:"le" doc:"Latch enable line" example:"22"`
	Data  int `json:"data" doc:"Serial data line" example:"10"`
	Clock int `json:"clock" doc:"Shift clock line" example:"11"`
}

// State is the lifecycle position of a Panel.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// DefaultDateTimePause separates the date group from the time group.
const DefaultDateTimePause = time.Second

// Panel owns the four lines once Init succeeds.
type Panel struct {
	digits int
	pins   Pins

	oe   gpio.Line
	le   gpio.Line
	data gpio.Line
	clk  gpio.Line

	state State

	newLine       LineFactory
	sysfsRoot     string
	exportSettle  time.Duration
	sleep         func(time.Duration)
	now           func() time.Time
	dateTimePause time.Duration
	logger        *slog.Logger
}

// New describes a panel of the given width. No hardware is touched.
func New(digits int, pins Pins, opts ...Option) *Panel {
	p := &Panel{
		digits:        digits,
		pins:          pins,
		sysfsRoot:     gpio.DefaultSysfsRoot,
		sleep:         time.Sleep,
		now:           time.Now,
		dateTimePause: DefaultDateTimePause,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.newLine == nil {
		p.newLine = SysfsLines(p.sysfsRoot, p.exportSettle)
	}
	return p
}

// namedLine ties a line slot to its role for diagnostics.
type namedLine struct {
	role    string
	pin     int
	initial gpio.Value
	slot    *gpio.Line
}

// lines lists the slots in acquisition order.
func (p *Panel) lines() []namedLine {
	return []namedLine{
		{role: "oe", pin: p.pins.OE, initial: gpio.High, slot: &p.oe},
		{role: "le", pin: p.pins.LE, initial: gpio.Low, slot: &p.le},
		{role: "data", pin: p.pins.Data, initial: gpio.Low, slot: &p.data},
		{role: "clock", pin: p.pins.Clock, initial: gpio.Low, slot: &p.clk},
	}
}

// Validate checks the panel description without touching any line.
func (p *Panel) Validate() error {
	if p.digits < 1 {
		return configError(msgNoDigits)
	}
	all := []int{p.pins.OE, p.pins.LE, p.pins.Data, p.pins.Clock}
	for _, pin := range all {
		if pin < 0 {
			return configError(msgNegativePin)
		}
	}
	seen := make(map[int]struct{}, len(all))
	for _, pin := range all {
		if _, dup := seen[pin]; dup {
			return configError(msgDuplicatePins)
		}
		seen[pin] = struct{}{}
	}
	return nil
}

// Init validates the description and acquires OE, LE, Data and Clock in that
// order, all as outputs with the output disabled. Acquisition is
// all-or-nothing: on failure the lines already taken are released in reverse
// order. Init on an initialized panel does nothing.
func (p *Panel) Init() error {
	if p.state == StateInitialized {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}

	named := p.lines()
	for i, nl := range named {
		line := p.newLine(nl.pin, gpio.Out, nl.initial)
		if err := line.Init(); err != nil {
			msg := line.LastError()
			p.rollback(named[:i])
			p.logger.Error("Panel init failed", "line", nl.role, "pin", nl.pin, "error", err)
			return pinError(nl.pin, nl.role, msg, err)
		}
		*nl.slot = line
	}

	p.state = StateInitialized
	p.logger.Info("Panel initialized",
		"digits", p.digits,
		"oe", p.pins.OE,
		"le", p.pins.LE,
		"data", p.pins.Data,
		"clock", p.pins.Clock)
	return nil
}

func (p *Panel) rollback(acquired []namedLine) {
	for i := len(acquired) - 1; i >= 0; i-- {
		nl := acquired[i]
		line := *nl.slot
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			p.logger.Warn("Failed to release line during rollback", "line", nl.role, "pin", nl.pin, "error", err)
		}
		*nl.slot = nil
	}
}

// Close releases OE, LE, Data and Clock in that order and stops at the first
// failure. Lines closed before the failure are released; calling Close again
// resumes with the line that failed.
func (p *Panel) Close() error {
	if p.state != StateInitialized {
		return configError(msgNotInitialized)
	}

	for _, nl := range p.lines() {
		line := *nl.slot
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			return pinError(nl.pin, nl.role, line.LastError(), err)
		}
		*nl.slot = nil
	}

	p.state = StateClosed
	p.logger.Info("Panel closed")
	return nil
}

// ready reports whether every line is held.
func (p *Panel) ready() bool {
	return p.state == StateInitialized && p.oe != nil && p.le != nil && p.data != nil && p.clk != nil
}

// RequireInitialized returns a KindConfig error unless every line is held.
func (p *Panel) RequireInitialized() error {
	if !p.ready() {
		return configError(msgNotInitialized)
	}
	return nil
}

// Digits returns the number of modules in the chain.
func (p *Panel) Digits() int {
	return p.digits
}

// Pins returns the line assignment.
func (p *Panel) Pins() Pins {
	return p.pins
}

// State returns the lifecycle state.
func (p *Panel) State() State {
	return p.state
}
