package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/version"
)

const defaultRestartDelay = 500 * time.Millisecond

// releaser is the part of *selfupdate.Updater the service needs.
type releaser interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

type service struct {
	repository selfupdate.Repository
	slug       string
	releases   releaser
	backups    *backupManager
	executable func() (string, error)

	onRestart    func()
	restartDelay time.Duration

	mu            sync.RWMutex
	state         State
	latestRelease *selfupdate.Release
	lastChecked   *time.Time
	lastError     error

	enabled        bool
	disabledReason string

	logger *slog.Logger
}

// NewService creates the updater. When the binary cannot be replaced the
// returned service is disabled and every operation fails with
// ErrCodeDisabled.
func NewService(opts *Options) (Service, error) {
	logger := logging.GetLogger("updater")

	if ok, reason := checkWritePermission(); !ok {
		logger.Warn("Update service disabled", "reason", reason)
		return &service{state: StateIdle, disabledReason: reason, logger: logger}, nil
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return newService(opts, updater, selfupdate.ExecutablePath, logger), nil
}

func newService(opts *Options, releases releaser, executable func() (string, error), logger *slog.Logger) *service {
	s := &service{
		repository:   selfupdate.ParseSlug(opts.Repository),
		slug:         opts.Repository,
		releases:     releases,
		executable:   executable,
		onRestart:    opts.OnRestart,
		restartDelay: opts.RestartDelay,
		state:        StateIdle,
		enabled:      true,
		logger:       logger,
	}
	if s.onRestart == nil {
		s.onRestart = s.signalRestart
	}
	if s.restartDelay == 0 {
		s.restartDelay = defaultRestartDelay
	}

	dir := opts.BackupDir
	if dir == "" {
		var err error
		if dir, err = defaultBackupDir(); err != nil {
			logger.Warn("Backups disabled", "error", err)
			return s
		}
	}
	backups, err := newBackupManager(dir, logger)
	if err != nil {
		logger.Warn("Failed to create backup manager", "error", err)
		return s
	}
	s.backups = backups
	return s
}

// checkWritePermission reports whether the binary's directory is writable.
func checkWritePermission() (bool, string) {
	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Sprintf("failed to get executable path: %v", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return false, fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	dir := filepath.Dir(exe)
	f, err := os.CreateTemp(dir, ".segpanel.update.test")
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return true, ""
}

func (s *service) IsEnabled() bool {
	return s.enabled
}

func (s *service) DisabledReason() string {
	return s.disabledReason
}

func (s *service) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	if !s.enabled {
		return nil, newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if !s.transitionTo(StateChecking, StateIdle, StateAvailable, StateError, StateRolledBack) {
		return nil, newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot check for updates in state %s", s.getState()), nil)
	}

	release, found, err := s.releases.DetectLatest(ctx, s.repository)
	now := time.Now()
	s.mu.Lock()
	s.lastChecked = &now
	s.mu.Unlock()

	if err != nil {
		s.setError(err)
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		err := fmt.Errorf("repository %s not found or has no releases", s.slug)
		s.setError(err)
		return nil, newError(ErrCodeNotFound, err.Error(), nil)
	}

	current := version.Version
	info := &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  release.Version(),
	}

	// A dev build is always behind.
	if current != "dev" && !release.GreaterThan(current) {
		s.transitionTo(StateIdle)
		return info, nil
	}

	s.mu.Lock()
	s.latestRelease = release
	s.mu.Unlock()
	s.transitionTo(StateAvailable)

	info.ReleaseNotes = release.ReleaseNotes
	info.ReleaseURL = release.URL
	info.PublishedAt = release.PublishedAt
	info.AssetSize = release.AssetByteSize
	info.UpdateAvailable = true
	return info, nil
}

func (s *service) ApplyUpdate(ctx context.Context) error {
	if !s.enabled {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	if s.getState() != StateAvailable {
		info, err := s.CheckForUpdate(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return newError(ErrCodeNoUpdate, "no update available", nil)
		}
	}

	if !s.transitionTo(StateDownloading, StateAvailable) {
		return newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot apply update in state %s", s.getState()), nil)
	}

	exe, err := s.executable()
	if err != nil {
		s.setError(err)
		return newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}

	if s.backups != nil {
		if err := s.backups.create(exe); err != nil {
			s.setError(err)
			return newError(ErrCodeBackupFailed, "failed to create backup", err)
		}
	}

	s.transitionTo(StateApplying)
	s.mu.RLock()
	release := s.latestRelease
	s.mu.RUnlock()

	if err := s.releases.UpdateTo(ctx, release, exe); err != nil {
		s.setError(err)
		s.attemptRollback()
		return newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	s.transitionTo(StateRestarting)
	s.logger.Info("Update applied, restarting", "version", release.Version())
	s.scheduleRestart()
	return nil
}

func (s *service) Rollback(_ context.Context) error {
	if !s.enabled {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}
	if s.backups == nil || !s.backups.hasBackup() {
		return newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}
	if err := s.backups.restore(); err != nil {
		return newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}

	s.transitionTo(StateRolledBack)
	s.logger.Info("Rollback completed, restarting", "version", s.backups.version())
	s.scheduleRestart()
	return nil
}

func (s *service) Restart(_ context.Context) error {
	s.logger.Info("Restart requested")
	s.scheduleRestart()
	return nil
}

func (s *service) GetStatus(_ context.Context) *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &Status{
		State:          s.state,
		CurrentVersion: version.Version,
		LastChecked:    s.lastChecked,
	}
	if s.latestRelease != nil {
		status.TargetVersion = s.latestRelease.Version()
	}
	if s.lastError != nil {
		status.Error = s.lastError.Error()
	}
	if s.backups != nil {
		status.BackupAvailable = s.backups.hasBackup()
		status.BackupVersion = s.backups.version()
	}
	return status
}

// transitionTo moves to newState if the current state is one of from, or
// unconditionally when from is empty.
func (s *service) transitionTo(newState State, from ...State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(from) > 0 && !slices.Contains(from, s.state) {
		return false
	}
	s.logger.Debug("State transition", "from", s.state, "to", newState)
	s.state = newState
	s.lastError = nil
	return true
}

func (s *service) getState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *service) setError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.state = StateError
	s.mu.Unlock()
}

func (s *service) attemptRollback() {
	if s.backups == nil || !s.backups.hasBackup() {
		s.logger.Error("No backup available for automatic rollback")
		return
	}
	if err := s.backups.restore(); err != nil {
		s.logger.Error("Failed to restore backup", "error", err)
		return
	}
	s.transitionTo(StateRolledBack)
	s.logger.Info("Automatic rollback completed")
}

func (s *service) scheduleRestart() {
	time.AfterFunc(s.restartDelay, s.onRestart)
}

// signalRestart asks the process to terminate; systemd brings it back.
func (s *service) signalRestart() {
	s.logger.Info("Sending SIGTERM to trigger restart")
	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		s.logger.Error("Failed to send SIGTERM", "error", err)
	}
}
