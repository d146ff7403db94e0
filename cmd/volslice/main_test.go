package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volslice/pkg/config"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&nopWriter{})
	cmd.SetErr(&nopWriter{})
	return cmd.Execute()
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// TestCommands verifies the slice, sweep, info, phantom and config commands end to end
func TestCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "volslice.yaml")
	volPath := filepath.Join(dir, "sphere.pvm.zst")

	require.NoError(t, run(t, "config", "init", "--config", cfgPath))
	assert.FileExists(t, cfgPath)
	assert.Error(t, run(t, "config", "init", "--config", cfgPath), "existing file needs --force")
	require.NoError(t, run(t, "config", "init", "--config", cfgPath, "--force"))

	// point the Baby dataset at the phantom written below
	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	cfg.Datasets["Baby"] = volPath
	cfg.Output.Dir = filepath.Join(dir, "out")
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	require.NoError(t, run(t, "phantom", "--config", cfgPath, "--shape", "shells",
		"--size", "20,18,16", "--spacing", "1,1,1.5", "-o", volPath))
	assert.FileExists(t, volPath)

	require.NoError(t, run(t, "info", "--config", cfgPath, volPath))
	require.NoError(t, run(t, "info", "--config", cfgPath))

	slicePath := filepath.Join(dir, "coronal.tif")
	require.NoError(t, run(t, "slice", "--config", cfgPath, "--orientation", "coronal",
		"--offset", "40", "--rotation", "15", "--width", "40", "--height", "30", "--stats", "-o", slicePath))
	assert.FileExists(t, slicePath)

	require.NoError(t, run(t, "slice", "--config", cfgPath, "-i", volPath, "--width", "16", "--height", "16"))
	assert.FileExists(t, filepath.Join(dir, "out", "baby_axial_000_000.png"))

	sweepDir := filepath.Join(dir, "sweep")
	require.NoError(t, run(t, "sweep", "--config", cfgPath, "--orientation", "sagittal",
		"--steps", "4", "--dir", sweepDir, "--format", "bmp", "--width", "12", "--height", "12"))
	for i := 0; i < 4; i++ {
		assert.FileExists(t, filepath.Join(sweepDir, fmt.Sprintf("slice_sagittal_%03d.bmp", i)))
	}
}

// TestCommandErrors verifies bad flags and missing inputs fail the command
func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")

	assert.Error(t, run(t, "slice", "--config", cfgPath, "--orientation", "oblique"))
	assert.Error(t, run(t, "slice", "--config", cfgPath, "--dataset", "Lobster"))
	assert.Error(t, run(t, "slice", "--config", cfgPath, "-i", filepath.Join(dir, "nope.pvm")))
	assert.Error(t, run(t, "phantom", "--config", cfgPath, "--size", "4,4", "-o", filepath.Join(dir, "p.pvm")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output:\n  format: gif\n"), 0644))
	assert.Error(t, run(t, "info", "--config", bad))
}
