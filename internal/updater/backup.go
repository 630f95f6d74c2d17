package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/smazurov/segpanel/internal/version"
)

const (
	backupFilename     = "segpanel.backup"
	backupInfoFilename = "backup.json"
)

var errNoBackup = errors.New("no backup available")

type backupInfo struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	ExecPath  string    `json:"exec_path"`
}

// backupManager keeps a single copy of the binary that was last replaced.
type backupManager struct {
	mu     sync.RWMutex
	dir    string
	info   *backupInfo
	logger *slog.Logger
}

// defaultBackupDir is ~/.cache/segpanel/backup.
func defaultBackupDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "segpanel", "backup"), nil
}

func newBackupManager(dir string, logger *slog.Logger) (*backupManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	m := &backupManager{dir: dir, logger: logger}
	m.load()
	return m, nil
}

func (m *backupManager) load() {
	data, err := os.ReadFile(filepath.Join(m.dir, backupInfoFilename))
	if err != nil {
		return
	}

	var info backupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		m.logger.Warn("Failed to parse backup info", "error", err)
		return
	}
	if _, err := os.Stat(m.backupPath()); err != nil {
		m.logger.Warn("Backup file missing", "path", m.backupPath())
		return
	}

	m.mu.Lock()
	m.info = &info
	m.mu.Unlock()
	m.logger.Info("Loaded backup info", "version", info.Version)
}

func (m *backupManager) backupPath() string {
	return filepath.Join(m.dir, backupFilename)
}

// create copies execPath into the backup slot and records the running version.
func (m *backupManager) create(execPath string) error {
	if err := copyFile(execPath, m.backupPath()); err != nil {
		return err
	}

	info := backupInfo{
		Version:   version.Version,
		CreatedAt: time.Now(),
		ExecPath:  execPath,
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal backup info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, backupInfoFilename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup info: %w", err)
	}

	m.mu.Lock()
	m.info = &info
	m.mu.Unlock()
	m.logger.Info("Backup created", "version", info.Version, "path", m.backupPath())
	return nil
}

// restore puts the backup back where it was taken from.
func (m *backupManager) restore() error {
	m.mu.RLock()
	info := m.info
	m.mu.RUnlock()
	if info == nil {
		return errNoBackup
	}

	if err := copyFile(m.backupPath(), info.ExecPath); err != nil {
		return err
	}
	m.logger.Info("Backup restored", "version", info.Version)
	return nil
}

func (m *backupManager) hasBackup() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info != nil
}

func (m *backupManager) version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return ""
	}
	return m.info.Version
}

// copyFile writes src to a temporary file next to dst and renames it over
// dst. A running executable cannot be truncated in place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".segpanel-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}
