package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/segpanel/internal/api/models"
	"github.com/smazurov/segpanel/internal/updater"
)

// registerUpdateRoutes registers the self-update endpoints. A disabled
// updater still registers them so clients get 503 with the reason.
func (s *Server) registerUpdateRoutes() {
	if s.options.UpdateService == nil {
		return
	}
	svc := s.options.UpdateService

	guard := func() error {
		if !svc.IsEnabled() {
			return huma.Error503ServiceUnavailable("Update service disabled: " + svc.DisabledReason())
		}
		return nil
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "check-updates",
		Method:      http.MethodGet,
		Path:        "/api/update/check",
		Summary:     "Check for Updates",
		Description: "Check if a newer release is available without downloading",
		Tags:        []string{"update"},
		Errors:      []int{401, 404, 409, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateCheckResponse, error) {
		if err := guard(); err != nil {
			return nil, err
		}
		info, err := svc.CheckForUpdate(ctx)
		if err != nil {
			return nil, mapUpdateError(err)
		}
		return &models.UpdateCheckResponse{
			Body: models.UpdateCheckData{
				CurrentVersion:  info.CurrentVersion,
				LatestVersion:   info.LatestVersion,
				ReleaseNotes:    info.ReleaseNotes,
				ReleaseURL:      info.ReleaseURL,
				PublishedAt:     info.PublishedAt,
				AssetSize:       info.AssetSize,
				UpdateAvailable: info.UpdateAvailable,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-update-status",
		Method:      http.MethodGet,
		Path:        "/api/update/status",
		Summary:     "Get Update Status",
		Description: "Get the current update state",
		Tags:        []string{"update"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateStatusResponse, error) {
		if err := guard(); err != nil {
			return nil, err
		}
		status := svc.GetStatus(ctx)
		return &models.UpdateStatusResponse{
			Body: models.UpdateStatusData{
				State:           string(status.State),
				CurrentVersion:  status.CurrentVersion,
				TargetVersion:   status.TargetVersion,
				Error:           status.Error,
				LastChecked:     status.LastChecked,
				BackupAvailable: status.BackupAvailable,
				BackupVersion:   status.BackupVersion,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-update",
		Method:      http.MethodPost,
		Path:        "/api/update/apply",
		Summary:     "Apply Update",
		Description: "Download and install the latest release, then restart",
		Tags:        []string{"update"},
		Errors:      []int{400, 401, 404, 409, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		if err := guard(); err != nil {
			return nil, err
		}
		if err := svc.ApplyUpdate(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return models.NewMessage("Update applied, restarting..."), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "rollback-update",
		Method:      http.MethodPost,
		Path:        "/api/update/rollback",
		Summary:     "Rollback Update",
		Description: "Restore the previous binary, then restart",
		Tags:        []string{"update"},
		Errors:      []int{401, 404, 500, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		if err := guard(); err != nil {
			return nil, err
		}
		if err := svc.Rollback(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return models.NewMessage("Rollback complete, restarting..."), nil
	})

	// Without D-Bus the updater's self-signal is the only way to restart.
	if s.options.SystemdManager == nil {
		huma.Register(s.api, huma.Operation{
			OperationID: "restart-service",
			Method:      http.MethodPost,
			Path:        "/api/system/restart",
			Summary:     "Restart Service",
			Description: "Terminate the process so the service manager restarts it",
			Tags:        []string{"system"},
			Errors:      []int{401, 500},
			Security:    withAuth(),
		}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
			if err := svc.Restart(ctx); err != nil {
				return nil, huma.Error500InternalServerError(err.Error())
			}
			return models.NewMessage("Restarting..."), nil
		})
	}
}

// mapUpdateError converts updater errors to Huma HTTP errors.
func mapUpdateError(err error) error {
	var updateErr *updater.Error
	if !errors.As(err, &updateErr) {
		return huma.Error500InternalServerError(err.Error())
	}
	switch updater.Code(err) {
	case updater.ErrCodeInvalidState:
		return huma.Error409Conflict(updateErr.Message)
	case updater.ErrCodeNoUpdate:
		return huma.Error400BadRequest(updateErr.Message)
	case updater.ErrCodeNotFound, updater.ErrCodeNoBackup:
		return huma.Error404NotFound(updateErr.Message)
	case updater.ErrCodeDisabled:
		return huma.Error503ServiceUnavailable(updateErr.Message)
	default:
		return huma.Error500InternalServerError(updateErr.Message)
	}
}
