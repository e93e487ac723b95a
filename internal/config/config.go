// Package config loads tool configuration from files, environment
// variables, and flags, and builds the loggers the other packages share.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Requirements RequirementsConfig `mapstructure:"requirements"`
	Server       ServerConfig       `mapstructure:"server"`
	Watch        WatchConfig        `mapstructure:"watch"`
	Layout       LayoutConfig       `mapstructure:"layout"`
	Log          LogConfig          `mapstructure:"log"`
}

// RequirementsConfig selects the snapshot source. Plan wins when both are
// set.
type RequirementsConfig struct {
	Dir  string `mapstructure:"dir"`
	Plan string `mapstructure:"plan"`
}

// ServerConfig holds the serve command's settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LayoutConfig points at an optional TOML geometry preset.
type LayoutConfig struct {
	Geometry string `mapstructure:"geometry"`
}

// LogConfig controls optional rotating file logging.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// NewViper returns a viper instance with defaults and REQGRAPH_ environment
// binding registered. Commands bind their flags onto it before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("requirements.dir", "requirements")
	v.SetDefault("requirements.plan", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("watch.debounce", 100*time.Millisecond)
	v.SetDefault("layout.geometry", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)

	v.SetEnvPrefix("REQGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration into v and unmarshals it. An explicit path must
// exist. With an empty path the standard locations are searched, and no
// config file at all is fine: defaults, environment, and bound flags still
// apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("reqgraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "reqgraph"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}
