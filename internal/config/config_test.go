package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dimensions != 2 {
		t.Errorf("expected 2 dimensions, got %d", cfg.Dimensions)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	p := cfg.Parameters()
	if p != sim.DefaultParameters() {
		t.Errorf("parameters mismatch:\n got  %+v\n want %+v", p, sim.DefaultParameters())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ring", "tight")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.IdealLength != 2 {
		t.Errorf("expected ideal length 2, got %f", cfg.IdealLength)
	}

	cfg.IdealLength = 99
	if Presets["ring"]["tight"].IdealLength != 2 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("ring", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "loose"); cfg != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("ring")
	if len(presets) != 2 || presets[0] != "loose" {
		t.Errorf("unexpected ring presets %v", presets)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, family := range Families() {
		for _, name := range ListPresets(family) {
			if err := GetPreset(family, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", family, name, err)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "layout"+ext)
			want := GetPreset("complete", "sphere")

			if err := Save(path, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if *got != *want {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"partial.yaml": "dimensions: 3\nrepulsion: 4\n",
		"partial.toml": "dimensions = 3\nrepulsion = 4.0\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if cfg.Dimensions != 3 || cfg.Repulsion != 4 {
			t.Errorf("%s: overrides not applied: %+v", name, cfg)
		}
		if cfg.Dt != sim.DefaultDt {
			t.Errorf("%s: expected default dt, got %f", name, cfg.Dt)
		}
	}
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		body   string
		config bool
	}{
		{"bad.json", "{}", false},
		{"damping.yaml", "damping: 1.5\n", true},
		{"dims.yaml", "dimensions: 4\n", true},
		{"steps.toml", "[run]\nmax_steps = 0\n", true},
		{"syntax.yaml", "dt: [\n", false},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if got := errors.Is(err, dynamo.ErrInvalidConfiguration); got != tt.config {
			t.Errorf("%s: invalid configuration = %v, want %v (%v)", tt.name, got, tt.config, err)
		}
	}
}
