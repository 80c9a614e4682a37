package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwlchan/blink/internal/config"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("values from file", func(t *testing.T) {
		path := writeYAML(t, `
library:
  path: /tmp/photos.db
  max_incremental_changes: 50
  preview_latency: 1s
cache:
  thumbnails: 100
  full_size: 4
review:
  optimistic: false
logging:
  level: DEBUG
`)
		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "/tmp/photos.db", cfg.Library.Path)
		assert.Equal(t, 50, cfg.Library.MaxIncrementalChanges)
		assert.Equal(t, time.Second, cfg.Library.PreviewLatency)
		assert.Equal(t, 100, cfg.Cache.Thumbnails)
		assert.Equal(t, 4, cfg.Cache.FullSize)
		assert.False(t, cfg.Review.Optimistic)
		assert.Equal(t, "DEBUG", cfg.Logging.Level)

		// untouched keys keep their defaults
		defaults := config.DefaultConfig()
		assert.Equal(t, defaults.Cache.Prefetch, cfg.Cache.Prefetch)
		assert.Equal(t, defaults.Review.AdvanceAfterReview, cfg.Review.AdvanceAfterReview)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.Cache.Thumbnails)
		assert.Equal(t, 10, cfg.Cache.FullSize)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeYAML(t, "cache:\n  thumbnails: 100\n")
		t.Setenv("BLINK_CACHE_THUMBNAILS", "42")
		t.Setenv("BLINK_LIBRARY_SIMULATE_INTERVAL", "5s")

		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Cache.Thumbnails)
		assert.Equal(t, 5*time.Second, cfg.Library.SimulateInterval)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		path := writeYAML(t, "cache:\n  full_size: 0\n")
		_, err := config.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "cache.full_size")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeYAML(t, "cache: [thumbnails\n")
		_, err := config.LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("tilde expansion", func(t *testing.T) {
		path := writeYAML(t, "library:\n  path: ~/photos.db\n")
		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)

		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "photos.db"), cfg.Library.Path)
	})
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.DefaultConfig()
	cfg.Cache.Thumbnails = 77
	cfg.Library.SimulateInterval = 3 * time.Second
	cfg.Review.Optimistic = false
	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
