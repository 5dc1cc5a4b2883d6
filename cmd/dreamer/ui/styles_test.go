package ui

import (
	"strings"
	"testing"
)

func TestDetectTheme(t *testing.T) {
	tests := []struct {
		name     string
		colorbg  string
		darkMode string
		wantDark bool
	}{
		{"dark background index", "15;0", "", true},
		{"light background index", "0;15", "", false},
		{"explicit dark mode", "", "1", true},
		{"default light", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COLORFGBG", tt.colorbg)
			t.Setenv("DREAMER_DARK_MODE", tt.darkMode)
			if got := DetectTheme().IsDark; got != tt.wantDark {
				t.Errorf("DetectTheme().IsDark = %v, want %v", got, tt.wantDark)
			}
		})
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(5); !strings.Contains(got, "─────") {
		t.Errorf("RenderDivider(5) = %q", got)
	}
	if got := s.RenderDivider(0); !strings.Contains(got, "─") {
		t.Errorf("RenderDivider(0) = %q", got)
	}
}

func TestToggle(t *testing.T) {
	s := NewStyles(DarkTheme())
	if !strings.Contains(s.Toggle("journal", true), "✓ journal") {
		t.Error("enabled toggle should render a check mark")
	}
	if !strings.Contains(s.Toggle("journal", false), "✗ journal") {
		t.Error("disabled toggle should render a cross")
	}
}
