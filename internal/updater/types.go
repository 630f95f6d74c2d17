// Package updater replaces the running segpanel binary with the latest
// GitHub release and keeps one backup for rollback.
package updater

import (
	"context"
	"time"
)

// State is the position of the updater in its check/apply cycle.
type State string

const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateAvailable   State = "available"
	StateDownloading State = "downloading"
	StateApplying    State = "applying"
	StateRestarting  State = "restarting"
	StateError       State = "error"
	StateRolledBack  State = "rolled_back"
)

// Service is the update surface used by the API and the update command.
type Service interface {
	// CheckForUpdate looks up the latest release without downloading it.
	CheckForUpdate(ctx context.Context) (*UpdateInfo, error)

	// ApplyUpdate backs up the current binary, installs the latest release
	// and schedules a restart.
	ApplyUpdate(ctx context.Context) error

	// Rollback restores the backup and schedules a restart.
	Rollback(ctx context.Context) error

	// Restart schedules a restart without changing the binary.
	Restart(ctx context.Context) error

	GetStatus(ctx context.Context) *Status

	// IsEnabled is false when the binary's directory is not writable.
	IsEnabled() bool
	DisabledReason() string
}

// UpdateInfo describes the latest release relative to the running version.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes"`
	ReleaseURL      string    `json:"release_url"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size"`
	UpdateAvailable bool      `json:"update_available"`
}

// Status is a snapshot of the updater.
type Status struct {
	State           State      `json:"state"`
	CurrentVersion  string     `json:"current_version"`
	TargetVersion   string     `json:"target_version,omitempty"`
	Error           string     `json:"error,omitempty"`
	LastChecked     *time.Time `json:"last_checked,omitempty"`
	BackupAvailable bool       `json:"backup_available"`
	BackupVersion   string     `json:"backup_version,omitempty"`
}

// Options configures NewService.
type Options struct {
	// Repository is the GitHub slug, e.g. "smazurov/segpanel".
	Repository string
	Prerelease bool
	// BackupDir defaults to ~/.cache/segpanel/backup.
	BackupDir string
	// OnRestart is called after an update or rollback. Defaults to sending
	// SIGTERM to the current process so systemd restarts it.
	OnRestart func()
	// RestartDelay lets the HTTP response go out before OnRestart runs.
	RestartDelay time.Duration
}
