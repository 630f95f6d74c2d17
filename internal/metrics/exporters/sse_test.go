package exporters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/metrics"
)

type mockEventBus struct {
	mu        sync.Mutex
	events    []events.Event
	published chan struct{}
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{
		events:    make([]events.Event, 0),
		published: make(chan struct{}, 100),
	}
}

func (m *mockEventBus) Publish(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	select {
	case m.published <- struct{}{}:
	default:
	}
}

func (m *mockEventBus) getEvents() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]events.Event, len(m.events))
	copy(result, m.events)
	return result
}

func TestSSEExporterPublishesMetrics(t *testing.T) {
	metrics.SetState("initialized")
	metrics.RecordDisplay("sse-test", 2, 0.01)
	want := metrics.GetPanelMetrics()

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	exporter.Start(ctx)

	select {
	case <-mock.published:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for metrics publish")
	}

	cancel()
	exporter.Stop()

	evts := mock.getEvents()
	if len(evts) == 0 {
		t.Fatal("expected at least one event")
	}
	pme, ok := evts[0].(events.PanelMetricsEvent)
	if !ok {
		t.Fatalf("event = %T, want PanelMetricsEvent", evts[0])
	}
	if pme.State != "initialized" {
		t.Errorf("State = %q, want initialized", pme.State)
	}
	if pme.DisplayUpdates != formatCount(want.DisplayUpdates) {
		t.Errorf("DisplayUpdates = %q, want %q", pme.DisplayUpdates, formatCount(want.DisplayUpdates))
	}
}

func TestSSEExporterStopIdempotent(t *testing.T) {
	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 10 * time.Millisecond

	exporter.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	exporter.Stop()
	exporter.Stop()
	exporter.Stop()

	countAfterStop := len(mock.getEvents())
	time.Sleep(30 * time.Millisecond)
	if countAfterWait := len(mock.getEvents()); countAfterWait != countAfterStop {
		t.Errorf("events published after stop: got %d, want %d", countAfterWait, countAfterStop)
	}
}

func TestSSEExporterStopBeforeStart(t *testing.T) {
	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 10 * time.Millisecond

	// Stop before start should not panic
	exporter.Stop()

	exporter.Start(t.Context())
	time.Sleep(30 * time.Millisecond)
	exporter.Stop()

	if len(mock.getEvents()) == 0 {
		t.Error("expected events after Start(), got none")
	}
}

func TestGetEventTypesForEndpoint(t *testing.T) {
	types := GetEventTypesForEndpoint("metrics")
	if _, ok := types["panel-metrics"]; !ok {
		t.Error("expected panel-metrics for metrics endpoint")
	}

	if types := GetEventTypesForEndpoint("unknown"); len(types) != 0 {
		t.Errorf("expected no event types for unknown endpoint, got %d", len(types))
	}
}

func TestFormatCount(t *testing.T) {
	if got := formatCount(42); got != "42" {
		t.Errorf("formatCount(42) = %q", got)
	}
}

func TestSnapshotReflectsCounters(t *testing.T) {
	metrics.SetState("closed")
	before := metrics.GetPanelMetrics()
	metrics.RecordFade("out")

	snap := Snapshot()
	if snap.EventType != "panel_metrics" {
		t.Errorf("EventType = %q", snap.EventType)
	}
	if snap.State != "closed" {
		t.Errorf("State = %q, want closed", snap.State)
	}
	if want := formatCount(before.FadesOut + 1); snap.FadesOut != want {
		t.Errorf("FadesOut = %q, want %q", snap.FadesOut, want)
	}
}
