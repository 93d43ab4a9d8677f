package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tessera.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[application]
name = "demo"
width = 800
height = 600

[renderer]
frames_in_flight = 3
validation = false
import_queue_size = 16
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Application.Name)
	assert.Equal(t, uint32(800), cfg.Application.Width)
	assert.Equal(t, uint32(3), cfg.Renderer.FramesInFlight)
	assert.False(t, cfg.Renderer.Validation)
	assert.Equal(t, 16, cfg.Renderer.ImportQueueSize)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Assets, cfg.Assets)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := writeConfig(t, `[application`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero window size", func(c *Config) { c.Application.Width = 0 }, true},
		{"one frame in flight", func(c *Config) { c.Renderer.FramesInFlight = 1 }, true},
		{"four frames in flight", func(c *Config) { c.Renderer.FramesInFlight = 4 }, true},
		{"three frames in flight", func(c *Config) { c.Renderer.FramesInFlight = 3 }, false},
		{"zero import queue", func(c *Config) { c.Renderer.ImportQueueSize = 0 }, true},
		{"zero workers", func(c *Config) { c.Assets.ImportWorkers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
