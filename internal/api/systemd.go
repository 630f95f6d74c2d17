package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/segpanel/internal/api/models"
)

func (s *Server) registerSystemdRoutes() {
	if s.options.SystemdManager == nil {
		return
	}
	mgr := s.options.SystemdManager

	huma.Register(s.api, huma.Operation{
		OperationID: "get-service-status",
		Method:      http.MethodGet,
		Path:        "/api/system/service",
		Summary:     "Service Status",
		Description: "Get the segpanel systemd unit status",
		Tags:        []string{"system"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SystemdServiceStatusResponse, error) {
		status, err := mgr.Status(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get service status", err)
		}
		return &models.SystemdServiceStatusResponse{
			Body: models.SystemdServiceStatus{
				Service:     status.Name,
				ActiveState: status.ActiveState,
				SubState:    status.SubState,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-service",
		Method:      http.MethodPost,
		Path:        "/api/system/restart",
		Summary:     "Restart Service",
		Description: "Queue a restart of the segpanel systemd unit",
		Tags:        []string{"system"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SystemdServiceActionResponse, error) {
		if err := mgr.Restart(ctx); err != nil {
			return nil, huma.Error500InternalServerError("Failed to restart service", err)
		}
		return &models.SystemdServiceActionResponse{
			Body: models.SystemdServiceAction{
				Service: mgr.Unit(),
				Action:  "restart",
				Success: true,
			},
		}, nil
	})
}
