package led

import (
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantNoop bool
	}{
		{"disabled", Config{}, true},
		{"explicit name", Config{Enabled: true, Name: "ACT", Root: t.TempDir()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := New(tt.cfg, nil)
			if ctrl == nil {
				t.Fatal("New() returned nil")
			}
			_, isNoop := ctrl.(*noop)
			if isNoop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", isNoop, tt.wantNoop)
			}
		})
	}
}

func TestLedForBoard(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"Raspberry Pi 4 Model B Rev 1.4", "ACT"},
		{"FriendlyElec NanoPC-T6", "sys_led"},
		{"Orange Pi 5", "green_led"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := ledForBoard(tt.model); got != tt.want {
			t.Errorf("ledForBoard(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestDetectBoard(t *testing.T) {
	if model := detectBoard(); model == "" {
		t.Error("detectBoard() returned empty string")
	}
}
