// Package config loads player configuration from .storyloom.yaml,
// STORYLOOM_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "STORYLOOM"

// PlayerConfig holds terminal player settings.
type PlayerConfig struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Config holds runtime configuration for a play session.
type Config struct {
	Database       string        `mapstructure:"database"`
	DefaultSlot    string        `mapstructure:"default_slot"`
	LogLevel       string        `mapstructure:"log_level"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
	Watch          bool          `mapstructure:"watch"`
	Player         PlayerConfig  `mapstructure:"player"`
}

// Init points v at the config file and environment. cfgFile overrides the
// default search for .storyloom.yaml in the working and home directories.
// A missing default file is not an error; a missing explicit file is.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".storyloom")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads configuration from v, applying built-in defaults for any values
// not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	v.SetDefault("database", "storyloom.db")
	v.SetDefault("default_slot", "$default")
	v.SetDefault("log_level", "info")
	v.SetDefault("resolve_timeout", "5s")
	v.SetDefault("watch", false)
	v.SetDefault("player.color", true)
	v.SetDefault("player.width", 80)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.ResolveTimeout < 0 {
		return Config{}, fmt.Errorf("resolve_timeout must not be negative, got %s", cfg.ResolveTimeout)
	}
	return cfg, nil
}

// ParseLevel converts a log_level value to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
