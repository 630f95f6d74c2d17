package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/metrics/exporters"
)

// registerMetricsRoutes registers the metrics SSE endpoint.
func (s *Server) registerMetricsRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Metrics Server-Sent Events Stream",
		Description: "Panel counters, sent on connect and then once per second",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, exporters.GetEventTypesForEndpoint("metrics"), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		stream := events.NewStream(10)
		events.Forward[events.PanelMetricsEvent](stream, s.eventBus)
		defer s.closeStream("metrics", stream)

		// The exporter ticks once per second; start with the current counters.
		if err := send.Data(exporters.Snapshot()); err != nil {
			return
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
