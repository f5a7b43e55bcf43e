package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Analysis.SplitPolicy != "bbox" || cfg.Analysis.GroundLength != 250 {
		t.Errorf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Model.InputSize != 512 || cfg.Model.Threshold != 0.5 {
		t.Errorf("unexpected model defaults: %+v", cfg.Model)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got level %q", cfg.Logging.Level)
	}

	cfg, err = LoadConfig("")
	if err != nil || cfg == nil {
		t.Fatalf("empty path: %v", err)
	}
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calcpitch.yaml")
	data := `
analysis:
  splitPolicy: centroid
  window:
    center: 2048
    width: 4096
marker:
  enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Analysis.SplitPolicy != "centroid" {
		t.Errorf("splitPolicy = %q, want centroid", cfg.Analysis.SplitPolicy)
	}
	if cfg.Analysis.Window.Center != 2048 || cfg.Analysis.Window.Width != 4096 {
		t.Errorf("window = %+v", cfg.Analysis.Window)
	}
	if !cfg.Marker.Enabled {
		t.Error("marker should be enabled")
	}
	// untouched keys keep defaults
	if cfg.Analysis.KernelSize != 5 || cfg.Marker.Language != "eng" {
		t.Errorf("defaults lost: kernel=%d lang=%q", cfg.Analysis.KernelSize, cfg.Marker.Language)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "analysis: [unclosed"},
		{"bad policy", "analysis:\n  splitPolicy: median\n"},
		{"bad kernel", "analysis:\n  kernelSize: 0\n"},
		{"bad threshold", "model:\n  threshold: 1.5\n"},
		{"bad level", "logging:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calcpitch.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("reloaded config differs from defaults:\n%+v\n%+v", cfg, DefaultConfig())
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:  "debug",
		EnvModelPath: "/opt/models/heel.onnx",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Model.Path != "/opt/models/heel.onnx" {
		t.Errorf("model path = %q", cfg.Model.Path)
	}
	if cfg.Model.Library != "" {
		t.Errorf("library should stay empty, got %q", cfg.Model.Library)
	}
}
