// Package models holds the request and response bodies of the HTTP API.
package models

import "github.com/smazurov/segpanel/internal/display"

// HealthData is the body of GET /api/health.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// VersionData is the body of GET /api/version.
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// PanelStatusResponse is the body of GET /api/panel and of every panel
// action.
type PanelStatusResponse struct {
	Body display.Status
}

// DisplayRequest latches a number.
type DisplayRequest struct {
	Body struct {
		Digits      string `json:"digits" example:"42" doc:"Decimal digits to show, right aligned"`
		LeadingZero bool   `json:"leading_zero,omitempty" example:"true" doc:"Pad with zeros to the panel width instead of blanks"`
		Fade        bool   `json:"fade,omitempty" example:"false" doc:"Fade in instead of switching on"`
	}
}

// FadeRequest ramps the brightness.
type FadeRequest struct {
	Body struct {
		Direction string `json:"direction" enum:"in,out" example:"in" doc:"Fade direction"`
	}
}

// OutputRequest switches the segment outputs.
type OutputRequest struct {
	Body struct {
		Enabled bool `json:"enabled" example:"true" doc:"Whether the segments are lit"`
	}
}
