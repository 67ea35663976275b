// Package config resolves run settings from defaults, an optional config
// file, URLTESTER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "URLTESTER"

// Config stores all run settings.
type Config struct {
	Domain           string        `mapstructure:"domain"`
	Threaded         bool          `mapstructure:"threaded"`
	Workers          int           `mapstructure:"workers"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRedirects     int           `mapstructure:"max_redirects"`
	UserAgent        string        `mapstructure:"user_agent"`
	Insecure         bool          `mapstructure:"insecure"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	LogLevel         string        `mapstructure:"log_level"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("domain", "")
	v.SetDefault("threaded", false)
	v.SetDefault("workers", 0)
	v.SetDefault("timeout", 100*time.Second)
	v.SetDefault("max_redirects", 50)
	v.SetDefault("user_agent", "URLTester/1.3.1")
	v.SetDefault("insecure", false)
	v.SetDefault("progress_interval", 100*time.Millisecond)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, when given, and decodes the merged settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("max_redirects must not be negative, got %d", c.MaxRedirects))
	}
	if c.ProgressInterval <= 0 {
		errs = append(errs, fmt.Errorf("progress_interval must be positive, got %s", c.ProgressInterval))
	}
	return errors.Join(errs...)
}
