package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter publishes panel metric snapshots on the event bus at a fixed
// interval for the metrics SSE stream.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishMetrics()
		}
	}
}

func (s *SSEExporter) publishMetrics() {
	s.eventBus.Publish(Snapshot())
}

// Snapshot reads the panel collectors into the event sent on the stream.
func Snapshot() events.PanelMetricsEvent {
	m := metrics.GetPanelMetrics()
	return events.PanelMetricsEvent{
		EventType:      "panel_metrics",
		State:          m.State,
		DisplayUpdates: formatCount(m.DisplayUpdates),
		BytesShifted:   formatCount(m.BytesShifted),
		FadesIn:        formatCount(m.FadesIn),
		FadesOut:       formatCount(m.FadesOut),
		Errors:         formatCount(m.Errors),
	}
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// GetEventTypesForEndpoint returns the metric event types served by an SSE endpoint.
func GetEventTypesForEndpoint(endpoint string) map[string]any {
	if endpoint == "metrics" {
		return map[string]any{
			"panel-metrics": events.PanelMetricsEvent{},
		}
	}
	return map[string]any{}
}
