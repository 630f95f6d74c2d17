package events

// Event type constants for kelindar/event.
const (
	TypeDisplayChanged uint32 = iota + 1
	TypeFade
	TypePanelStateChanged
	TypePanelError
	TypeLogEntry
	TypePanelMetrics
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DisplayChangedEvent is published after a number has been latched into the panel.
type DisplayChangedEvent struct {
	Digits      string `json:"digits" example:"42" doc:"Digits as requested"`
	Shown       string `json:"shown" example:"042" doc:"Digits as latched, after padding"`
	LeadingZero bool   `json:"leading_zero" example:"true" doc:"Whether the number was zero padded"`
	Source      string `json:"source" example:"api" doc:"Who requested the change: api, clock, cli"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayChangedEvent.
func (e DisplayChangedEvent) Type() uint32 { return TypeDisplayChanged }

// FadeEvent is published when a fade completes.
type FadeEvent struct {
	Direction string `json:"direction" example:"in" doc:"Fade direction: in or out"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FadeEvent.
func (e FadeEvent) Type() uint32 { return TypeFade }

// PanelStateChangedEvent is published on lifecycle and output-enable changes.
// Used for LED control.
type PanelStateChangedEvent struct {
	State         string `json:"state" example:"initialized" doc:"Panel state: uninitialized, initialized, closed"`
	OutputEnabled bool   `json:"output_enabled" example:"false" doc:"Whether the segment outputs are lit"`
	Timestamp     string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PanelStateChangedEvent.
func (e PanelStateChangedEvent) Type() uint32 { return TypePanelStateChanged }

// PanelErrorEvent is published when a panel operation fails.
type PanelErrorEvent struct {
	Operation string `json:"operation" example:"display" doc:"Operation that failed"`
	Kind      string `json:"kind" example:"format" doc:"Error kind: config, pin, format"`
	Pin       int    `json:"pin" example:"-1" doc:"GPIO line involved, -1 if none"`
	Message   string `json:"message" example:"number too big to be displayed" doc:"Error message"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PanelErrorEvent.
func (e PanelErrorEvent) Type() uint32 { return TypePanelError }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"panel" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// PanelMetricsEvent is a periodic snapshot of the panel counters.
type PanelMetricsEvent struct {
	EventType      string `json:"type"`
	State          string `json:"state"`
	DisplayUpdates string `json:"display_updates"`
	BytesShifted   string `json:"bytes_shifted"`
	FadesIn        string `json:"fades_in"`
	FadesOut       string `json:"fades_out"`
	Errors         string `json:"errors"`
}

// Type returns the event type identifier for PanelMetricsEvent.
func (e PanelMetricsEvent) Type() uint32 { return TypePanelMetrics }
