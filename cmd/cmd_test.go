package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/panel"
)

var testPins = panel.Pins{OE: 18, LE: 22, Data: 10, Clock: 11}

func fakeSysfs(t *testing.T, pins ...int) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"export", "unexport"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, pin := range pins {
		dir := filepath.Join(root, "gpio"+strconv.Itoa(pin))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"direction", "value"} {
			if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func testHardware(root string) Hardware {
	return Hardware{Digits: 2, Pins: testPins, Backend: BackendSysfs, SysfsRoot: root}
}

func TestNewPanelBackends(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{BackendSysfs, false},
		{BackendPeriph, false},
		{"gpiod", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			hw := testHardware(t.TempDir())
			hw.Backend = tt.backend
			p, err := NewPanel(hw, logging.GetLogger("panel"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPanel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.State() != panel.StateUninitialized {
				t.Errorf("State() = %v, want uninitialized", p.State())
			}
		})
	}
}

func TestRunWithPanelReleasesPins(t *testing.T) {
	root := fakeSysfs(t, 18, 22, 10, 11)

	var shown string
	err := runWithPanel(testHardware(root), logging.GetLogger("cli"), func(svc *display.Service) error {
		if err := svc.Show(display.SourceCLI, "7", true); err != nil {
			return err
		}
		shown = svc.Status().LastShown
		return nil
	})
	if err != nil {
		t.Fatalf("runWithPanel() error = %v", err)
	}
	if shown != "07" {
		t.Errorf("LastShown = %q, want %q", shown, "07")
	}

	data, err := os.ReadFile(filepath.Join(root, "unexport"))
	if err != nil {
		t.Fatal(err)
	}
	// Clock is released last.
	if got := string(data); got != "11" {
		t.Errorf("unexport = %q, want %q", got, "11")
	}
}

func TestRunWithPanelPropagatesErrors(t *testing.T) {
	root := fakeSysfs(t, 18, 22, 10, 11)
	sentinel := errors.New("boom")

	err := runWithPanel(testHardware(root), logging.GetLogger("cli"), func(*display.Service) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("runWithPanel() error = %v, want %v", err, sentinel)
	}
}

func TestRunWithPanelInitFailure(t *testing.T) {
	// Data and Clock are missing from the tree.
	root := fakeSysfs(t, 18, 22)

	called := false
	err := runWithPanel(testHardware(root), logging.GetLogger("cli"), func(*display.Service) error {
		called = true
		return nil
	})
	if !errors.Is(err, panel.ErrPin) {
		t.Fatalf("runWithPanel() error = %v, want ErrPin", err)
	}
	if called {
		t.Error("fn ran although Init failed")
	}
}

func TestShowCmd(t *testing.T) {
	root := fakeSysfs(t, 18, 22, 10, 11)
	hw := testHardware(root)

	cmd := CreateShowCmd(func() Hardware { return hw })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--leading-zero", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "05" {
		t.Errorf("output = %q, want %q", got, "05")
	}
}

func TestFadeCmdRejectsDirection(t *testing.T) {
	cmd := CreateFadeCmd(func() Hardware { return Hardware{} })
	cmd.SetArgs([]string{"sideways"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() succeeded for an unknown direction")
	}
}

func TestClockCmdFlags(t *testing.T) {
	cmd := CreateClockCmd(func() Hardware { return Hardware{} })
	if got := cmd.Flags().Lookup("interval").DefValue; got != "5s" {
		t.Errorf("interval default = %q, want 5s", got)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"negative interval", []string{"--interval", "-1s"}},
		{"zero interval", []string{"--interval", "0s"}},
		{"negative cycles", []string{"--cycles", "-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			cmd := CreateClockCmd(func() Hardware {
				called = true
				return Hardware{}
			})
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			if err := cmd.Execute(); err == nil {
				t.Fatalf("Execute(%v) succeeded", tt.args)
			}
			if called {
				t.Error("hardware resolved for rejected flags")
			}
		})
	}
}
