package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`
	Playback PlaybackConfig `mapstructure:"playback" yaml:"playback"`
	Advanced AdvancedConfig `mapstructure:"advanced" yaml:"advanced"`
}

// LoggingConfig controls log output, level and rotation
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // text or json
	File       string `mapstructure:"file" yaml:"file"`
	Color      bool   `mapstructure:"color" yaml:"color"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig locates the local state database
type DatabaseConfig struct {
	Path           string `mapstructure:"path" yaml:"path"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	WALMode        bool   `mapstructure:"wal_mode" yaml:"wal_mode"`
}

// MetadataConfig points at the metadata proxy backend
type MetadataConfig struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// PlaybackConfig holds default viewing preferences applied when the
// preference store has no persisted values yet
type PlaybackConfig struct {
	Quality         string `mapstructure:"quality" yaml:"quality"`
	Region          string `mapstructure:"region" yaml:"region"`
	DownloadMode    bool   `mapstructure:"download_mode" yaml:"download_mode"`
	PerformanceMode bool   `mapstructure:"performance_mode" yaml:"performance_mode"`
}

// AdvancedConfig holds debugging and escape-hatch settings
type AdvancedConfig struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`
	// ClipboardCommand overrides the platform clipboard tool, e.g.
	// "wl-copy" or "xclip -selection clipboard"
	ClipboardCommand string `mapstructure:"clipboard_command" yaml:"clipboard_command"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Color:      true,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Database: DatabaseConfig{
			Path:           filepath.Join(GetDataDir(), "flicker.db"),
			MaxConnections: 4,
			WALMode:        true,
		},
		Metadata: MetadataConfig{
			BaseURL:    "http://localhost:8080",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			UserAgent:  "flicker/1.0",
		},
		Playback: PlaybackConfig{
			Quality: "1080p",
			Region:  "us",
		},
	}
}

// Load reads configuration from the given file (or the default location
// when empty), layered over the built-in defaults. The returned viper
// instance can be used to watch for changes.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.color", defaults.Logging.Color)
	v.SetDefault("logging.max_size", defaults.Logging.MaxSize)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.max_age", defaults.Logging.MaxAge)
	v.SetDefault("logging.compress", defaults.Logging.Compress)
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)
	v.SetDefault("database.wal_mode", defaults.Database.WALMode)
	v.SetDefault("metadata.base_url", defaults.Metadata.BaseURL)
	v.SetDefault("metadata.timeout", defaults.Metadata.Timeout)
	v.SetDefault("metadata.max_retries", defaults.Metadata.MaxRetries)
	v.SetDefault("metadata.user_agent", defaults.Metadata.UserAgent)
	v.SetDefault("playback.quality", defaults.Playback.Quality)
	v.SetDefault("playback.region", defaults.Playback.Region)
	v.SetDefault("playback.download_mode", defaults.Playback.DownloadMode)
	v.SetDefault("playback.performance_mode", defaults.Playback.PerformanceMode)
	v.SetDefault("advanced.debug", defaults.Advanced.Debug)
	v.SetDefault("advanced.clipboard_command", defaults.Advanced.ClipboardCommand)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(GetConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, v, nil
}

// SaveDefaultConfig writes the built-in configuration as a YAML file
func SaveDefaultConfig(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
