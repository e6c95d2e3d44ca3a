package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:       "https://api.example.com",
			Timeout:   30 * time.Second,
			ProbePath: "/v3/organizations",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, _, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/v3/organizations", cfg.API.ProbePath)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 100, cfg.Logging.MaxSizeMB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KUBETOKEN_API_URL", "https://api.cf.example.com")
	t.Setenv("KUBETOKEN_LOGGING_LEVEL", "debug")

	cfg, _, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.cf.example.com", cfg.API.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubetoken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`api:
  url: https://api.file.example.com
  timeout: 5s
logging:
  format: json
`), 0o600))

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.file.example.com", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
		errMsg    string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "empty url is allowed",
			mutate: func(c *Config) { c.API.URL = "" },
		},
		{
			name:      "bad url scheme",
			mutate:    func(c *Config) { c.API.URL = "ftp://api.example.com" },
			wantError: true,
			errMsg:    "api.url",
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.API.Timeout = 0 },
			wantError: true,
			errMsg:    "api.timeout",
		},
		{
			name:      "relative probe path",
			mutate:    func(c *Config) { c.API.ProbePath = "v3/info" },
			wantError: true,
			errMsg:    "api.probe_path",
		},
		{
			name:      "bad level",
			mutate:    func(c *Config) { c.Logging.Level = "trace" },
			wantError: true,
			errMsg:    "logging.level",
		},
		{
			name:      "bad format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			wantError: true,
			errMsg:    "logging.format",
		},
		{
			name:      "negative rotation",
			mutate:    func(c *Config) { c.Logging.MaxBackups = -1 },
			wantError: true,
			errMsg:    "logging.max_backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "xml"
	cfg.API.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
}

func TestLoggingOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.File = "/var/log/kubetoken.log"

	opts := cfg.LoggingOptions()
	assert.Equal(t, "info", opts.Level)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "/var/log/kubetoken.log", opts.File)
	assert.Equal(t, 3, opts.MaxBackups)
}
