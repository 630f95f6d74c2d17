package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/segpanel/internal/events"
)

// registerSSERoutes registers the panel event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time panel events: display changes, fades, state changes and errors",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"display-changed":     events.DisplayChangedEvent{},
		"fade":                events.FadeEvent{},
		"panel-state-changed": events.PanelStateChangedEvent{},
		"panel-error":         events.PanelErrorEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		stream := events.NewStream(10)
		events.Forward[events.DisplayChangedEvent](stream, s.eventBus)
		events.Forward[events.FadeEvent](stream, s.eventBus)
		events.Forward[events.PanelStateChangedEvent](stream, s.eventBus)
		events.Forward[events.PanelErrorEvent](stream, s.eventBus)
		defer s.closeStream("events", stream)

		// Open with the current state so clients need no separate GET.
		if s.options.Panel != nil {
			st := s.options.Panel.Status()
			if err := send.Data(events.PanelStateChangedEvent{
				State:         st.State,
				OutputEnabled: st.OutputEnabled,
				Timestamp:     time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-stream.C():
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// closeStream detaches an SSE client from the bus and notes events it missed.
func (s *Server) closeStream(endpoint string, stream *events.Stream) {
	stream.Close()
	if n := stream.Dropped(); n > 0 {
		s.logger.Debug("SSE client fell behind", "endpoint", endpoint, "dropped", n)
	}
}
