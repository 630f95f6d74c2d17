// Package display serialises access to one panel for concurrent callers and
// reports what happens on the event bus, in metrics and in the logs.
package display

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/metrics"
	"github.com/smazurov/segpanel/internal/panel"
)

// Source identifies who asked for a display change.
type Source string

const (
	SourceAPI   Source = "api"
	SourceClock Source = "clock"
	SourceCLI   Source = "cli"
)

// Fade directions.
const (
	FadeIn  = "in"
	FadeOut = "out"
)

// ErrInvalidDirection is returned by Fade for anything but "in" or "out".
var ErrInvalidDirection = errors.New("fade direction must be in or out")

// dateTimeGroups is the number of two digit groups DisplayDateTime shows.
const dateTimeGroups = 5

// Status is a snapshot of the service and its panel.
type Status struct {
	State         string     `json:"state" example:"initialized" doc:"Panel state"`
	Digits        int        `json:"digits" example:"2" doc:"Number of modules in the chain"`
	Pins          panel.Pins `json:"pins" doc:"GPIO line assignment"`
	OutputEnabled bool       `json:"output_enabled" doc:"Whether the segments are lit"`
	Busy          bool       `json:"busy" doc:"Whether an operation is running"`
	LastShown     string     `json:"last_shown,omitempty" example:"42" doc:"Last value latched"`
	LastError     string     `json:"last_error,omitempty" doc:"Last failure, cleared on success"`
	UpdatedAt     time.Time  `json:"updated_at" doc:"Time of the last change"`
}

// Service owns a Panel. Hardware operations are serialised by one mutex
// held for the whole operation, so fades and shifts never interleave.
type Service struct {
	opMu  sync.Mutex
	panel *panel.Panel
	bus   *events.Bus

	mu            sync.RWMutex
	state         string
	outputEnabled bool
	busy          bool
	lastShown     string
	lastErr       string
	updatedAt     time.Time

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for status timestamps and the
// date/time stamp. It should match the panel's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wraps p. bus may be nil.
func NewService(p *panel.Panel, bus *events.Bus, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		panel:  p,
		bus:    bus,
		state:  p.State().String(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the panel.
func (s *Service) Start() error {
	s.begin()
	defer s.end()

	if err := s.panel.Init(); err != nil {
		return s.fail("init", err)
	}
	s.setOutput(false)
	s.publishState()
	s.logger.Info("Display service started", "digits", s.panel.Digits())
	return nil
}

// Stop releases the panel.
func (s *Service) Stop() error {
	s.begin()
	defer s.end()

	if err := s.panel.Close(); err != nil {
		return s.fail("close", err)
	}
	s.setOutput(false)
	s.publishState()
	s.logger.Info("Display service stopped")
	return nil
}

// Show latches digits, optionally zero padded to the panel width, and lights
// the panel.
func (s *Service) Show(source Source, digits string, leadingZero bool) error {
	return s.show(source, digits, leadingZero, false)
}

// ShowFaded latches digits like Show and fades them in.
func (s *Service) ShowFaded(source Source, digits string, leadingZero bool) error {
	return s.show(source, digits, leadingZero, true)
}

func (s *Service) show(source Source, digits string, leadingZero, fade bool) error {
	s.begin()
	defer s.end()

	start := time.Now()
	var err error
	if leadingZero {
		err = s.panel.DisplayNumberWithLeadingZero(digits)
	} else {
		err = s.panel.DisplayNumber(digits)
	}
	if err != nil {
		return s.fail("display", err)
	}
	elapsed := time.Since(start)
	if fade {
		s.panel.FadeIn()
		metrics.RecordFade(FadeIn)
	} else {
		s.panel.Enable()
	}

	shown := digits
	if pad := s.panel.Digits() - len(digits); leadingZero && pad > 0 {
		shown = strings.Repeat("0", pad) + digits
	}
	metrics.RecordDisplay(string(source), s.panel.Digits(), elapsed.Seconds())
	s.setShown(shown)
	s.setOutput(true)

	s.publish(events.DisplayChangedEvent{
		Digits:      digits,
		Shown:       shown,
		LeadingZero: leadingZero,
		Source:      string(source),
		Timestamp:   s.stamp(),
	})
	if fade {
		s.publish(events.FadeEvent{Direction: FadeIn, Timestamp: s.stamp()})
	}
	s.publishState()
	s.logger.Debug("Number displayed", "digits", digits, "shown", shown, "source", source, "duration", elapsed)
	return nil
}

// Fade ramps the brightness in or out.
func (s *Service) Fade(direction string) error {
	if direction != FadeIn && direction != FadeOut {
		return ErrInvalidDirection
	}

	s.begin()
	defer s.end()

	if err := s.panel.RequireInitialized(); err != nil {
		return s.fail("fade", err)
	}
	if direction == FadeIn {
		s.panel.FadeIn()
	} else {
		s.panel.FadeOut()
	}
	metrics.RecordFade(direction)
	s.setOutput(direction == FadeIn)

	s.publish(events.FadeEvent{Direction: direction, Timestamp: s.stamp()})
	s.publishState()
	s.logger.Debug("Fade complete", "direction", direction)
	return nil
}

// ShowDateTime runs one date and time sequence. It blocks for the duration
// of ten fades plus the pause between the groups.
func (s *Service) ShowDateTime() error {
	s.begin()
	defer s.end()

	start := time.Now()
	stamp, err := s.panel.DisplayDateTime()
	if err != nil {
		return s.fail("datetime", err)
	}
	elapsed := time.Since(start)

	metrics.RecordDisplay(string(SourceClock), dateTimeGroups*s.panel.Digits(), elapsed.Seconds())
	for range dateTimeGroups {
		metrics.RecordFade(FadeIn)
		metrics.RecordFade(FadeOut)
	}
	s.setShown(stamp[8:10])
	s.setOutput(false)

	s.publish(events.DisplayChangedEvent{
		Digits:    stamp,
		Shown:     stamp[8:10],
		Source:    string(SourceClock),
		Timestamp: s.stamp(),
	})
	s.publishState()
	s.logger.Debug("Date and time displayed", "stamp", stamp, "duration", elapsed)
	return nil
}

// Enable lights the latched pattern.
func (s *Service) Enable() error {
	return s.output(true)
}

// Disable blanks the panel, keeping the latched pattern.
func (s *Service) Disable() error {
	return s.output(false)
}

func (s *Service) output(enabled bool) error {
	s.begin()
	defer s.end()

	if err := s.panel.RequireInitialized(); err != nil {
		return s.fail("output", err)
	}
	if enabled {
		s.panel.Enable()
	} else {
		s.panel.Disable()
	}
	s.setOutput(enabled)
	s.publishState()
	s.logger.Debug("Output changed", "enabled", enabled)
	return nil
}

// Status returns a snapshot without waiting for a running operation.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		State:         s.state,
		Digits:        s.panel.Digits(),
		Pins:          s.panel.Pins(),
		OutputEnabled: s.outputEnabled,
		Busy:          s.busy,
		LastShown:     s.lastShown,
		LastError:     s.lastErr,
		UpdatedAt:     s.updatedAt,
	}
}

// begin takes the operation lock and marks the service busy.
func (s *Service) begin() {
	s.opMu.Lock()
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()
}

func (s *Service) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	s.opMu.Unlock()
}

// fail records err and returns it unchanged.
func (s *Service) fail(op string, err error) error {
	kind := "unknown"
	pin := -1
	var perr *panel.Error
	if errors.As(err, &perr) {
		kind = perr.Kind.String()
		pin = perr.Pin
	}
	metrics.RecordError(kind)

	s.mu.Lock()
	s.lastErr = err.Error()
	s.updatedAt = s.now()
	s.mu.Unlock()

	s.publish(events.PanelErrorEvent{
		Operation: op,
		Kind:      kind,
		Pin:       pin,
		Message:   err.Error(),
		Timestamp: s.stamp(),
	})
	s.logger.Warn("Panel operation failed", "operation", op, "kind", kind, "error", err)
	return err
}

func (s *Service) setShown(shown string) {
	s.mu.Lock()
	s.lastShown = shown
	s.lastErr = ""
	s.updatedAt = s.now()
	s.mu.Unlock()
}

func (s *Service) setOutput(enabled bool) {
	s.mu.Lock()
	s.outputEnabled = enabled
	s.updatedAt = s.now()
	s.mu.Unlock()
}

func (s *Service) publishState() {
	state := s.panel.State().String()
	metrics.SetState(state)

	s.mu.Lock()
	s.state = state
	enabled := s.outputEnabled
	s.mu.Unlock()

	s.publish(events.PanelStateChangedEvent{
		State:         state,
		OutputEnabled: enabled,
		Timestamp:     s.stamp(),
	})
}

func (s *Service) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func (s *Service) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
