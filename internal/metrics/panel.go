// Package metrics provides Prometheus metrics for the display panel.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	displayUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "display_updates_total",
		Help:      "Numbers latched into the panel",
	}, []string{"source"})

	bytesShifted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "bytes_shifted_total",
		Help:      "Segment bytes clocked into the shift registers",
	})

	fades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "fades_total",
		Help:      "Completed fades by direction",
	}, []string{"direction"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "errors_total",
		Help:      "Failed panel operations by error kind",
	}, []string{"kind"})

	panelState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "state",
		Help:      "1 for the current panel lifecycle state, 0 otherwise",
	}, []string{"state"})

	lastDisplayDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "segpanel",
		Subsystem: "panel",
		Name:      "last_display_duration_seconds",
		Help:      "Wall time of the most recent display update",
	})

	// Local cache for SSE exporter access.
	cache   PanelMetrics
	cacheMu sync.RWMutex
)

// States reported by the state gauge.
var States = []string{"uninitialized", "initialized", "closed"}

// PanelMetrics holds current metric values.
type PanelMetrics struct {
	DisplayUpdates     float64
	BytesShifted       float64
	FadesIn            float64
	FadesOut           float64
	Errors             float64
	State              string
	LastDisplaySeconds float64
}

// RecordDisplay counts one latched number of width bytes.
func RecordDisplay(source string, width int, seconds float64) {
	displayUpdates.WithLabelValues(source).Inc()
	bytesShifted.Add(float64(width))
	lastDisplayDuration.Set(seconds)

	cacheMu.Lock()
	cache.DisplayUpdates++
	cache.BytesShifted += float64(width)
	cache.LastDisplaySeconds = seconds
	cacheMu.Unlock()
}

// RecordFade counts a completed fade. direction is "in" or "out".
func RecordFade(direction string) {
	fades.WithLabelValues(direction).Inc()

	cacheMu.Lock()
	if direction == "in" {
		cache.FadesIn++
	} else {
		cache.FadesOut++
	}
	cacheMu.Unlock()
}

// RecordError counts a failed operation by kind.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()

	cacheMu.Lock()
	cache.Errors++
	cacheMu.Unlock()
}

// SetState marks state as the current lifecycle state.
func SetState(state string) {
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		panelState.WithLabelValues(s).Set(v)
	}

	cacheMu.Lock()
	cache.State = state
	cacheMu.Unlock()
}

// GetPanelMetrics returns a copy of the current values.
func GetPanelMetrics() PanelMetrics {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return cache
}
