package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan DisplayChangedEvent, 1)

	unsub := bus.Subscribe(func(e DisplayChangedEvent) {
		received <- e
	})
	defer unsub()

	event := DisplayChangedEvent{
		Digits:    "42",
		Shown:     "042",
		Source:    "api",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Shown != event.Shown {
		t.Errorf("Expected shown %s, got %s", event.Shown, got.Shown)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan FadeEvent, 1)
	received2 := make(chan FadeEvent, 1)

	unsub1 := bus.Subscribe(func(e FadeEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e FadeEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(FadeEvent{Direction: "in"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PanelErrorEvent, 1)

	unsub := bus.Subscribe(func(e PanelErrorEvent) {
		received <- e
	})

	bus.Publish(PanelErrorEvent{Operation: "display"})
	<-received

	unsub()

	bus.Publish(PanelErrorEvent{Operation: "fade"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	displayReceived := make(chan bool, 1)
	stateReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ DisplayChangedEvent) { displayReceived <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ PanelStateChangedEvent) { stateReceived <- true })
	defer unsub2()

	bus.Publish(DisplayChangedEvent{Digits: "1"})
	<-displayReceived

	select {
	case <-stateReceived:
		t.Fatal("State subscriber should NOT have received DisplayChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(PanelStateChangedEvent{State: "initialized"})
	<-stateReceived

	select {
	case <-displayReceived:
		t.Fatal("Display subscriber should NOT have received PanelStateChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ FadeEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(FadeEvent{
					Direction: "out",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"DisplayChanged", DisplayChangedEvent{Digits: "12"}},
		{"Fade", FadeEvent{Direction: "in"}},
		{"PanelStateChanged", PanelStateChangedEvent{State: "closed"}},
		{"PanelError", PanelErrorEvent{Kind: "pin", Pin: 18}},
		{"LogEntry", LogEntryEvent{Level: "info", Module: "panel"}},
		{"PanelMetrics", PanelMetricsEvent{EventType: "panel_metrics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case DisplayChangedEvent:
				unsub = bus.Subscribe(func(e DisplayChangedEvent) { received <- e })
			case FadeEvent:
				unsub = bus.Subscribe(func(e FadeEvent) { received <- e })
			case PanelStateChangedEvent:
				unsub = bus.Subscribe(func(e PanelStateChangedEvent) { received <- e })
			case PanelErrorEvent:
				unsub = bus.Subscribe(func(e PanelErrorEvent) { received <- e })
			case LogEntryEvent:
				unsub = bus.Subscribe(func(e LogEntryEvent) { received <- e })
			case PanelMetricsEvent:
				unsub = bus.Subscribe(func(e PanelMetricsEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestBus_UnknownHandler(_ *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestEventJSONSerialization(t *testing.T) {
	event := PanelErrorEvent{
		Operation: "display",
		Kind:      "format",
		Pin:       -1,
		Message:   "number too big to be displayed",
		Timestamp: "2025-01-27T10:30:00Z",
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if result["kind"] != "format" || result["pin"] != float64(-1) {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestStreamMergesTypes(t *testing.T) {
	bus := New()
	stream := NewStream(10)
	Forward[DisplayChangedEvent](stream, bus)
	Forward[FadeEvent](stream, bus)
	defer stream.Close()

	bus.Publish(DisplayChangedEvent{Digits: "7", Shown: "07"})
	bus.Publish(FadeEvent{Direction: "in"})

	got := map[string]bool{}
	for range 2 {
		select {
		case e := <-stream.C():
			switch e := e.(type) {
			case DisplayChangedEvent:
				got["display:"+e.Shown] = true
			case FadeEvent:
				got["fade:"+e.Direction] = true
			default:
				t.Errorf("unexpected event %T", e)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	if !got["display:07"] || !got["fade:in"] {
		t.Errorf("events = %v, want display:07 and fade:in", got)
	}
}

func TestStreamCountsDrops(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		publish     int
		wantDropped uint64
	}{
		{"fits", 3, 3, 0},
		{"one over", 2, 3, 1},
		{"unbuffered", 0, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := New()
			stream := NewStream(tt.size)
			Forward[FadeEvent](stream, bus)
			defer stream.Close()

			for range tt.publish {
				bus.Publish(FadeEvent{Direction: "out"})
			}

			deadline := time.Now().Add(time.Second)
			for uint64(len(stream.C()))+stream.Dropped() < uint64(tt.publish) {
				if time.Now().After(deadline) {
					t.Fatalf("delivered %d dropped %d, want %d total", len(stream.C()), stream.Dropped(), tt.publish)
				}
				time.Sleep(time.Millisecond)
			}
			if got := stream.Dropped(); got != tt.wantDropped {
				t.Errorf("Dropped() = %d, want %d", got, tt.wantDropped)
			}
		})
	}
}

func TestStreamClose(t *testing.T) {
	bus := New()
	stream := NewStream(10)
	Forward[FadeEvent](stream, bus)

	stream.Close()
	stream.Close()
	Forward[DisplayChangedEvent](stream, bus)

	bus.Publish(FadeEvent{Direction: "in"})
	bus.Publish(DisplayChangedEvent{Shown: "1"})

	select {
	case e := <-stream.C():
		t.Errorf("received %T after Close", e)
	case <-time.After(50 * time.Millisecond):
	}
}
