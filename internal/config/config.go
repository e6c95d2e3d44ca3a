package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/criteo/kubetoken/internal/logging"
)

// ConfigFileEnvVar names a config file when --config is not given
const ConfigFileEnvVar = "KUBETOKEN_CONFIG_FILE"

// Config holds all configuration for the CLI
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the remote API the resolved token is presented to
type APIConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ProbePath string        `mapstructure:"probe_path"` // used by whoami
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug | info | warn | error
	Format     string `mapstructure:"format"` // json | text
	File       string `mapstructure:"file"`   // empty logs to stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// NewViper creates a new viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("api.url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.probe_path", "/v3/organizations")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	// Bind environment variables with KUBETOKEN_ prefix
	v.SetEnvPrefix("KUBETOKEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from defaults, environment variables and the
// optional config file. CLI flags are bound by the caller on the returned viper.
func Load(configFile string) (*Config, *viper.Viper, error) {
	v := NewViper()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// LoadWithViper loads configuration using a pre-configured viper instance
// This allows CLI flags to be bound before loading
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration and reports every problem found
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.API.Timeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("api.timeout must be positive"))
	}
	if c.API.ProbePath != "" && !strings.HasPrefix(c.API.ProbePath, "/") {
		errs = multierror.Append(errs, fmt.Errorf("api.probe_path must start with '/'"))
	}
	if c.API.URL != "" && !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		errs = multierror.Append(errs, fmt.Errorf("api.url must be an http or https URL"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = multierror.Append(errs, fmt.Errorf("logging.level must be debug, info, warn, or error"))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = multierror.Append(errs, fmt.Errorf("logging.format must be json or text"))
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		errs = multierror.Append(errs, fmt.Errorf("logging.max_size_mb, logging.max_backups and logging.max_age_days must not be negative"))
	}

	return errs.ErrorOrNil()
}

// LoggingOptions converts the logging section for logging.NewLogger
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
	}
}
