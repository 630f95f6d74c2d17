package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// LEDRequest overrides an LED until the next panel event.
type LEDRequest struct {
	Body struct {
		Type    string `json:"type" example:"status" doc:"LED type"`
		Enabled bool   `json:"enabled" example:"true" doc:"Whether the LED should be on"`
		Pattern string `json:"pattern,omitempty" example:"blink" doc:"Pattern: solid, blink, heartbeat"`
	}
}

// LEDCapabilities lists what the board offers.
type LEDCapabilities struct {
	AvailableTypes    []string `json:"available_types" doc:"LED types on this board"`
	AvailablePatterns []string `json:"available_patterns" doc:"Patterns on this board"`
}

type LEDCapabilitiesResponse struct {
	Body LEDCapabilities
}

func (s *Server) registerLEDRoutes() {
	if s.options.LEDController == nil {
		s.logger.Debug("LED controller not available, skipping LED routes")
		return
	}
	ctrl := s.options.LEDController

	huma.Register(s.api, huma.Operation{
		OperationID: "control-led",
		Method:      http.MethodPost,
		Path:        "/api/leds",
		Summary:     "Control LED",
		Description: "Set an LED directly. The status LED follows the panel again on its next event.",
		Tags:        []string{"leds"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *LEDRequest) (*struct{}, error) {
		if err := ctrl.Set(input.Body.Type, input.Body.Enabled, input.Body.Pattern); err != nil {
			return nil, huma.Error400BadRequest("Failed to control LED", err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "List the LED types and patterns of this board",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*LEDCapabilitiesResponse, error) {
		return &LEDCapabilitiesResponse{
			Body: LEDCapabilities{
				AvailableTypes:    ctrl.Available(),
				AvailablePatterns: ctrl.Patterns(),
			},
		}, nil
	})
}
