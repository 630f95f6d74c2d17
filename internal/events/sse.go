package events

import (
	"sync"
	"sync/atomic"

	"github.com/kelindar/event"
)

// Stream merges several event types from a Bus into one buffered channel,
// the shape an SSE handler selects over. An event that finds the buffer full
// is dropped and counted.
type Stream struct {
	ch      chan any
	dropped atomic.Uint64

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// NewStream returns a Stream with room for size pending events.
func NewStream(size int) *Stream {
	return &Stream{ch: make(chan any, size)}
}

// Forward adds events of type T from bus to s. It is a no-op on a closed
// Stream.
func Forward[T Event](s *Stream, bus *Bus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.unsubs = append(s.unsubs, event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}))
}

// C delivers the forwarded events. It is never closed.
func (s *Stream) C() <-chan any {
	return s.ch
}

// Dropped reports how many events were lost to a full buffer.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes every forwarded type. It is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.closed = true
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
