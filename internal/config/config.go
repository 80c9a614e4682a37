// Package config loads blink's settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Review  ReviewConfig  `mapstructure:"review"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds photo library configuration
type LibraryConfig struct {
	Path                  string        `mapstructure:"path"`                    // bbolt file
	MaxIncrementalChanges int           `mapstructure:"max_incremental_changes"` // larger changes are sent as "reload everything"
	PreviewLatency        time.Duration `mapstructure:"preview_latency"`         // artificial render delay
	SimulateInterval      time.Duration `mapstructure:"simulate_interval"`       // 0 disables the simulator
}

// CacheConfig holds preview cache sizes
type CacheConfig struct {
	Thumbnails int `mapstructure:"thumbnails"`
	FullSize   int `mapstructure:"full_size"`
	Prefetch   int `mapstructure:"prefetch"` // photos either side of the focus
}

// ReviewConfig holds review behaviour
type ReviewConfig struct {
	Optimistic         bool `mapstructure:"optimistic"`           // update albums locally before the library confirms
	AdvanceAfterReview bool `mapstructure:"advance_after_review"` // move to the next photo after 1/2/3
}

// UIConfig holds UI configuration
type UIConfig struct {
	StripWidth int `mapstructure:"strip_width"` // thumbnails either side of the focus
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Path:                  filepath.Join(defaultDataPath(), "library.db"),
			MaxIncrementalChanges: 200,
			PreviewLatency:        150 * time.Millisecond,
		},
		Cache: CacheConfig{
			Thumbnails: 500,
			FullSize:   10,
			Prefetch:   3,
		},
		Review: ReviewConfig{
			Optimistic:         true,
			AdvanceAfterReview: true,
		},
		UI: UIConfig{
			StripWidth: 4,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "blink.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "blink")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "blink")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "blink")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "blink")
	}
}

// newViper returns a viper instance with defaults and BLINK_ env overrides
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("library.path", d.Library.Path)
	v.SetDefault("library.max_incremental_changes", d.Library.MaxIncrementalChanges)
	v.SetDefault("library.preview_latency", d.Library.PreviewLatency)
	v.SetDefault("library.simulate_interval", d.Library.SimulateInterval)
	v.SetDefault("cache.thumbnails", d.Cache.Thumbnails)
	v.SetDefault("cache.full_size", d.Cache.FullSize)
	v.SetDefault("cache.prefetch", d.Cache.Prefetch)
	v.SetDefault("review.optimistic", d.Review.Optimistic)
	v.SetDefault("review.advance_after_review", d.Review.AdvanceAfterReview)
	v.SetDefault("ui.strip_width", d.UI.StripWidth)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)

	// BLINK_LIBRARY_PATH overrides library.path
	v.SetEnvPrefix("BLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// Config file not found is OK, use defaults
		case path != "" && errors.Is(err, os.ErrNotExist):
			// Explicit path that doesn't exist yet, use defaults
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Library.Path = expandPath(cfg.Library.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, or to the default location when path is empty
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(DefaultConfigPath(), "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("library.path", cfg.Library.Path)
	v.Set("library.max_incremental_changes", cfg.Library.MaxIncrementalChanges)
	v.Set("library.preview_latency", cfg.Library.PreviewLatency.String())
	v.Set("library.simulate_interval", cfg.Library.SimulateInterval.String())
	v.Set("cache.thumbnails", cfg.Cache.Thumbnails)
	v.Set("cache.full_size", cfg.Cache.FullSize)
	v.Set("cache.prefetch", cfg.Cache.Prefetch)
	v.Set("review.optimistic", cfg.Review.Optimistic)
	v.Set("review.advance_after_review", cfg.Review.AdvanceAfterReview)
	v.Set("ui.strip_width", cfg.UI.StripWidth)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	if c.Cache.Thumbnails <= 0 {
		return fmt.Errorf("cache.thumbnails must be positive, got %d", c.Cache.Thumbnails)
	}
	if c.Cache.FullSize <= 0 {
		return fmt.Errorf("cache.full_size must be positive, got %d", c.Cache.FullSize)
	}
	if c.Cache.Prefetch < 0 {
		return fmt.Errorf("cache.prefetch must not be negative, got %d", c.Cache.Prefetch)
	}
	if c.UI.StripWidth < 0 {
		return fmt.Errorf("ui.strip_width must not be negative, got %d", c.UI.StripWidth)
	}
	if c.Library.PreviewLatency < 0 || c.Library.SimulateInterval < 0 {
		return errors.New("library durations must not be negative")
	}
	return nil
}

// expandPath expands a leading ~ to the home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
