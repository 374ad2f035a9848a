package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	if want := (Run{Mode: ModeInteractive}); *got != want {
		t.Errorf("NewCliParams() = %+v, want %+v", *got, want)
	}
	if !got.Interactive() {
		t.Error("a default run should be interactive")
	}
}

func TestRunInteractive(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeInteractive, true},
		{"", true},
		{ModeSnapshot, false},
	}
	for _, tt := range tests {
		r := &Run{Mode: tt.mode}
		if got := r.Interactive(); got != tt.want {
			t.Errorf("Run{Mode: %q}.Interactive() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}
