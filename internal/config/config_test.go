package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.StrictMode {
		t.Error("strict mode should default off")
	}
	if !cfg.OwnershipAnnotations || !cfg.PlaceholderStubs {
		t.Error("ownership annotations and placeholder stubs should default on")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.ProjectName != "GeneratedUML" {
		t.Errorf("project name = %q", cfg.ProjectName)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "projectName": "engine",
  "strictMode": true,
  "layout": {"rowWrap": 4}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProjectName != "engine" || !cfg.StrictMode {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Layout.RowWrap != 4 {
		t.Errorf("layout.rowWrap = %d", cfg.Layout.RowWrap)
	}
	// Unset keys keep their defaults.
	if cfg.Layout.StepX != 300 {
		t.Errorf("layout.stepX default lost: %d", cfg.Layout.StepX)
	}
	if !cfg.PlaceholderStubs {
		t.Error("placeholderStubs default lost")
	}
}

func TestValidateRejectsBadLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.RowWrap = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for rowWrap=0")
	}
}

func TestPosition(t *testing.T) {
	l := DefaultConfig().Layout
	x, y := l.Position(0)
	if x != 40 || y != 40 {
		t.Errorf("Position(0) = %d,%d", x, y)
	}
	x, y = l.Position(10) // wraps to second row
	if x != 40 || y != 240 {
		t.Errorf("Position(10) = %d,%d", x, y)
	}
	x, y = l.Position(3)
	if x != 40+3*300 || y != 40 {
		t.Errorf("Position(3) = %d,%d", x, y)
	}
}

func TestPositionZeroValueLayout(t *testing.T) {
	var l LayoutConfig
	// Must not panic; degrades to a single-column grid at the origin.
	x, y := l.Position(5)
	if x != 0 || y != 0 {
		t.Errorf("Position(5) on zero layout = %d,%d", x, y)
	}
}
