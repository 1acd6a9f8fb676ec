package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2.0, cfg.GC.GCTriggerRatio)
	assert.True(t, cfg.Parser.AllowHashbang)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().VM.MaxCallStackDepth, cfg.VM.MaxCallStackDepth)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "esprit.yaml")

	cfg := DefaultConfig()
	cfg.VM.MaxCallStackDepth = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.VM.MaxCallStackDepth)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("gc trigger ratio", func(t *testing.T) {
		t.Setenv("ESPRIT_GC_TRIGGER_RATIO", "3.5")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, 3.5, cfg.GC.GCTriggerRatio)
	})

	t.Run("max stack depth", func(t *testing.T) {
		t.Setenv("ESPRIT_MAX_STACK_DEPTH", "256")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, 256, cfg.VM.MaxCallStackDepth)
	})
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GC.GCTriggerRatio = 0.5
	assert.Error(t, cfg.Validate())
}
