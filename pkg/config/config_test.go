package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"volslice/internal/models"
	"volslice/pkg/plane"
)

// TestDefaultConfig verifies the defaults are complete and valid
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores != runtime.NumCPU() {
		t.Errorf("Expected %d cores, got %d", runtime.NumCPU(), cfg.Processing.NumCores)
	}
	if len(cfg.Datasets) != len(models.Datasets) {
		t.Errorf("Expected %d datasets, got %d", len(models.Datasets), len(cfg.Datasets))
	}
	path, ok := cfg.DatasetPath(models.CTHead)
	if !ok || path != filepath.Join("resources", "CT-Head.pvm") {
		t.Errorf("Unexpected CT-Head path %q", path)
	}
	if cfg.View.Orientation != plane.Axial || cfg.View.Offset != 0 || cfg.View.Rotation != 0 {
		t.Errorf("Expected axial view at offset 0, got %+v", cfg.View.Params)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
}

// TestLoadMissingFile verifies a missing file yields the defaults
func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Output.Width != 512 {
		t.Errorf("Expected default width 512, got %d", cfg.Output.Width)
	}
}

// TestYAMLRoundTrip verifies SaveConfig and LoadConfig agree on YAML
func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "volslice.yaml")

	cfg := DefaultConfig()
	cfg.View.Dataset = models.Fuel
	cfg.View.Orientation = plane.Coronal
	cfg.View.Offset = 42
	cfg.View.Rotation = -15
	cfg.Transfer.Preset = "hot"
	cfg.Log.Logfile = "/var/log/volslice.log"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.View.Dataset != models.Fuel {
		t.Errorf("Expected dataset Fuel, got %v", loaded.View.Dataset)
	}
	if loaded.View.Params != cfg.View.Params {
		t.Errorf("Expected view %+v, got %+v", cfg.View.Params, loaded.View.Params)
	}
	if loaded.Transfer.Preset != "hot" {
		t.Errorf("Expected hot preset, got %q", loaded.Transfer.Preset)
	}
	if loaded.Log.Logfile != cfg.Log.Logfile {
		t.Errorf("Expected logfile %q, got %q", cfg.Log.Logfile, loaded.Log.Logfile)
	}
}

// TestTOMLRoundTrip verifies .toml files use the TOML codec
func TestTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volslice.toml")

	cfg := DefaultConfig()
	cfg.View.Orientation = plane.Sagittal
	cfg.View.Offset = 75
	cfg.Server.Addr = "127.0.0.1:9000"
	cfg.Log.MaxSize = 7

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "[server]") {
		t.Errorf("Expected a [server] table in:\n%s", data)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.View.Orientation != plane.Sagittal || loaded.View.Offset != 75 {
		t.Errorf("Unexpected view %+v", loaded.View.Params)
	}
	if loaded.Server.Addr != cfg.Server.Addr {
		t.Errorf("Expected addr %q, got %q", cfg.Server.Addr, loaded.Server.Addr)
	}
	if loaded.Log.MaxSize != 7 {
		t.Errorf("Expected max_log_size 7, got %d", loaded.Log.MaxSize)
	}
}

// TestLoadRejectsInvalid verifies bad values are reported as ErrInvalidConfig
func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"offset":  "view:\n  offset: 140\n",
		"kernel":  "processing:\n  kernel: cubic\n",
		"format":  "output:\n  format: gif\n",
		"size":    "output:\n  width: 0\n",
		"preset":  "transfer:\n  preset: sepia\n",
		"points":  "transfer:\n  points:\n    - position: 2\n      color: [0, 0, 0, 255]\n",
		"workers": "processing:\n  numCores: 0\n",
	}
	dir := t.TempDir()
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}

	path := filepath.Join(dir, "orientation.yaml")
	if err := os.WriteFile(path, []byte("view:\n  orientation: oblique\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for an unknown orientation")
	}
}

// TestTransferPoints verifies control points take precedence over the preset
func TestTransferPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	body := "transfer:\n  preset: inverted\n  points:\n    - position: 0\n      color: [0, 0, 255, 255]\n    - position: 1\n      color: [255, 0, 0, 255]\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	tf, err := cfg.TransferFunc()
	if err != nil {
		t.Fatalf("TransferFunc failed: %v", err)
	}
	if c := tf(0); c.B != 255 || c.R != 0 {
		t.Errorf("Expected blue at 0, got %v", c)
	}
}

// TestTransferColorMapPreset verifies color map names are accepted as presets
func TestTransferColorMapPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transfer.Preset = "Viridis"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	cfg.Transfer.Preset = "sepia"
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "Viridis") {
		t.Errorf("Expected known presets in %q", err.Error())
	}
}
