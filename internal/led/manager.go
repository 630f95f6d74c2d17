package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/segpanel/internal/events"
)

// Manager follows panel events and drives the status LED: solid while the
// panel is initialized, blinking after a failure until the next successful
// operation, off otherwise.
type Manager struct {
	controller Controller
	eventBus   *events.Bus
	unsubs     []func()
	logger     *slog.Logger

	mu      sync.Mutex
	current string // "off", or the pattern last applied
}

// NewManager creates a manager for controller.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start subscribes to panel events and switches the LED off.
func (m *Manager) Start() {
	m.apply("off")
	m.unsubs = append(m.unsubs,
		m.eventBus.Subscribe(func(e events.PanelStateChangedEvent) {
			m.handleState(e)
		}),
		m.eventBus.Subscribe(func(e events.PanelErrorEvent) {
			m.handleError(e)
		}),
	)
	m.logger.Info("LED manager started")
}

// Stop unsubscribes and switches the LED off.
func (m *Manager) Stop() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.apply("off")
	m.logger.Info("LED manager stopped")
}

func (m *Manager) handleState(e events.PanelStateChangedEvent) {
	m.logger.Debug("Panel state changed", "state", e.State, "output_enabled", e.OutputEnabled)
	if e.State == "initialized" {
		m.apply(PatternSolid)
		return
	}
	m.apply("off")
}

func (m *Manager) handleError(e events.PanelErrorEvent) {
	m.logger.Debug("Panel error", "operation", e.Operation, "kind", e.Kind)
	m.apply(PatternBlink)
}

// apply sets the LED unless it already shows want.
func (m *Manager) apply(want string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == want {
		return
	}

	var err error
	if want == "off" {
		err = m.controller.Set(StatusLED, false, PatternSolid)
	} else {
		err = m.controller.Set(StatusLED, true, want)
	}
	if err != nil {
		m.logger.Warn("Failed to set status LED", "pattern", want, "error", err)
		return
	}
	m.current = want
}

// Controller returns the underlying LED controller.
func (m *Manager) Controller() Controller {
	return m.controller
}
