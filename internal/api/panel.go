package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/segpanel/internal/api/models"
	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/panel"
)

// mapPanelError converts panel failures to HTTP errors: bad input is 400,
// a call in the wrong lifecycle state is 422, hardware failures are 500.
func mapPanelError(err error) error {
	var perr *panel.Error
	switch {
	case errors.Is(err, display.ErrInvalidDirection):
		return huma.Error400BadRequest(err.Error())
	case errors.As(err, &perr):
		switch perr.Kind {
		case panel.KindFormat:
			return huma.Error400BadRequest(perr.Message)
		case panel.KindConfig:
			return huma.Error422UnprocessableEntity(perr.Message)
		default:
			return huma.Error500InternalServerError(perr.Error())
		}
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

func (s *Server) registerPanelRoutes() {
	if s.options.Panel == nil {
		s.logger.Debug("Panel service not available, skipping panel routes")
		return
	}
	svc := s.options.Panel

	status := func() *models.PanelStatusResponse {
		return &models.PanelStatusResponse{Body: svc.Status()}
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-panel",
		Method:      http.MethodGet,
		Path:        "/api/panel",
		Summary:     "Panel Status",
		Description: "Get the panel state, line assignment and last shown value",
		Tags:        []string{"panel"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.PanelStatusResponse, error) {
		return status(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "display-number",
		Method:      http.MethodPost,
		Path:        "/api/panel/display",
		Summary:     "Display Number",
		Description: "Latch a number into the panel and light it. Shorter numbers are right aligned.",
		Tags:        []string{"panel"},
		Errors:      []int{400, 401, 422, 500},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.DisplayRequest) (*models.PanelStatusResponse, error) {
		show := svc.Show
		if input.Body.Fade {
			show = svc.ShowFaded
		}
		if err := show(display.SourceAPI, input.Body.Digits, input.Body.LeadingZero); err != nil {
			return nil, mapPanelError(err)
		}
		return status(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "fade-panel",
		Method:      http.MethodPost,
		Path:        "/api/panel/fade",
		Summary:     "Fade",
		Description: "Ramp the brightness in or out over about one second",
		Tags:        []string{"panel"},
		Errors:      []int{400, 401, 422, 500},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.FadeRequest) (*models.PanelStatusResponse, error) {
		if err := svc.Fade(input.Body.Direction); err != nil {
			return nil, mapPanelError(err)
		}
		return status(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "display-datetime",
		Method:      http.MethodPost,
		Path:        "/api/panel/datetime",
		Summary:     "Display Date and Time",
		Description: "Run one date and time sequence. Blocks for about eleven seconds.",
		Tags:        []string{"panel"},
		Errors:      []int{400, 401, 422, 500},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.PanelStatusResponse, error) {
		if err := svc.ShowDateTime(); err != nil {
			return nil, mapPanelError(err)
		}
		return status(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-panel-output",
		Method:      http.MethodPost,
		Path:        "/api/panel/output",
		Summary:     "Output Enable",
		Description: "Light or blank the latched pattern",
		Tags:        []string{"panel"},
		Errors:      []int{401, 422, 500},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.OutputRequest) (*models.PanelStatusResponse, error) {
		set := svc.Disable
		if input.Body.Enabled {
			set = svc.Enable
		}
		if err := set(); err != nil {
			return nil, mapPanelError(err)
		}
		return status(), nil
	})
}
