package led

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/segpanel/internal/events"
)

type mockController struct {
	mu       sync.Mutex
	setCalls []setCall
}

type setCall struct {
	ledType string
	enabled bool
	pattern string
}

func (m *mockController) Set(ledType string, enabled bool, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, setCall{ledType, enabled, pattern})
	return nil
}

func (m *mockController) Available() []string {
	return []string{StatusLED}
}

func (m *mockController) Patterns() []string {
	return []string{PatternSolid, PatternBlink}
}

func (m *mockController) calls() []setCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]setCall(nil), m.setCalls...)
}

func (m *mockController) last() setCall {
	calls := m.calls()
	if len(calls) == 0 {
		return setCall{}
	}
	return calls[len(calls)-1]
}

func newTestManager(t *testing.T) (*Manager, *mockController, *events.Bus) {
	t.Helper()
	ctrl := &mockController{}
	bus := events.New()
	mgr := NewManager(ctrl, bus, slog.New(slog.DiscardHandler))
	mgr.Start()
	t.Cleanup(mgr.Stop)
	return mgr, ctrl, bus
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestManager_StartsOff(t *testing.T) {
	_, ctrl, _ := newTestManager(t)

	if got := ctrl.last(); got.enabled || got.ledType != StatusLED {
		t.Errorf("first call = %+v, want status LED off", got)
	}
}

func TestManager_InitializedIsSolid(t *testing.T) {
	_, ctrl, bus := newTestManager(t)

	bus.Publish(events.PanelStateChangedEvent{State: "initialized"})
	eventually(t, func() bool {
		c := ctrl.last()
		return c.enabled && c.pattern == PatternSolid
	})
}

func TestManager_ErrorBlinksUntilNextSuccess(t *testing.T) {
	_, ctrl, bus := newTestManager(t)

	bus.Publish(events.PanelStateChangedEvent{State: "initialized"})
	eventually(t, func() bool { return ctrl.last().pattern == PatternSolid && ctrl.last().enabled })

	bus.Publish(events.PanelErrorEvent{Operation: "display", Kind: "format", Pin: -1})
	eventually(t, func() bool { return ctrl.last().pattern == PatternBlink })

	bus.Publish(events.PanelStateChangedEvent{State: "initialized", OutputEnabled: true})
	eventually(t, func() bool { return ctrl.last().pattern == PatternSolid && ctrl.last().enabled })
}

func TestManager_ClosedIsOff(t *testing.T) {
	_, ctrl, bus := newTestManager(t)

	bus.Publish(events.PanelStateChangedEvent{State: "initialized"})
	eventually(t, func() bool { return ctrl.last().enabled })

	bus.Publish(events.PanelStateChangedEvent{State: "closed"})
	eventually(t, func() bool { return !ctrl.last().enabled })
}

func TestManager_SkipsRepeatedPattern(t *testing.T) {
	_, ctrl, bus := newTestManager(t)

	for range 5 {
		bus.Publish(events.PanelStateChangedEvent{State: "initialized", OutputEnabled: true})
	}
	eventually(t, func() bool { return ctrl.last().enabled })
	time.Sleep(50 * time.Millisecond)

	// off at start, then solid once
	if got := len(ctrl.calls()); got != 2 {
		t.Errorf("Set called %d times, want 2", got)
	}
}

func TestManager_Controller(t *testing.T) {
	mgr, ctrl, _ := newTestManager(t)

	if got := mgr.Controller(); got != ctrl {
		t.Error("Controller() did not return the original controller")
	}
}
