package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(DisplayChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case DisplayChangedEvent:
		event.Publish(b.dispatcher, e)
	case FadeEvent:
		event.Publish(b.dispatcher, e)
	case PanelStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case PanelErrorEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	case PanelMetricsEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e FadeEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DisplayChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FadeEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PanelStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PanelErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PanelMetricsEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Unknown handler types get a no-op unsubscribe
		return func() {}
	}
}
