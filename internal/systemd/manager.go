// Package systemd reports readiness to the service manager and controls
// the segpanel unit over D-Bus.
package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/coreos/go-systemd/v22/dbus"
)

// DefaultUnit is the unit segpanel is installed as.
const DefaultUnit = "segpanel.service"

// Notify sends state to the service manager. It reports false without error
// when the process was not started by systemd.
func Notify(state string) (bool, error) {
	return daemon.SdNotify(false, state)
}

// Notification states.
const (
	Ready     = daemon.SdNotifyReady
	Stopping  = daemon.SdNotifyStopping
	Reloading = daemon.SdNotifyReloading
)

// UnitStatus is the subset of unit properties the API reports.
type UnitStatus struct {
	Name        string
	ActiveState string
	SubState    string
}

// Manager handles unit lifecycle operations via D-Bus.
type Manager struct {
	conn *dbus.Conn
	unit string
}

// NewManager connects to the system bus, or the user bus when user is set.
func NewManager(ctx context.Context, unit string, user bool) (*Manager, error) {
	if unit == "" {
		unit = DefaultUnit
	}
	connect := dbus.NewSystemConnectionContext
	if user {
		connect = dbus.NewUserConnectionContext
	}
	conn, err := connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to systemd: %w", err)
	}
	return &Manager{conn: conn, unit: unit}, nil
}

// Unit returns the managed unit name.
func (m *Manager) Unit() string {
	return m.unit
}

// Status reads the active and sub state of the unit.
func (m *Manager) Status(ctx context.Context) (UnitStatus, error) {
	props, err := m.conn.GetUnitPropertiesContext(ctx, m.unit)
	if err != nil {
		return UnitStatus{}, err
	}
	status := UnitStatus{Name: m.unit}
	if v, ok := props["ActiveState"].(string); ok {
		status.ActiveState = v
	}
	if v, ok := props["SubState"].(string); ok {
		status.SubState = v
	}
	return status, nil
}

// Restart queues a restart of the unit in replace mode.
func (m *Manager) Restart(ctx context.Context) error {
	_, err := m.conn.RestartUnitContext(ctx, m.unit, "replace", nil)
	return err
}

// Close closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
