package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
)

// ClientConfig configures the diary command-line client.
type ClientConfig struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Backend BackendConfig
}

// StorageConfig locates the on-device data.
type StorageConfig struct {
	DataDir   string // Badger directory and backups live under here
	BackupDir string // Default: {DataDir}/backups
}

// BackendConfig points the client at a hosted backend.
type BackendConfig struct {
	URL     string        // Empty runs the client offline
	Timeout time.Duration // Per-request timeout (default: 15s)
	Strict  bool          // Reads without a session fail instead of returning nothing
}

// ClientFlags carries command-line overrides. Empty fields are unset.
type ClientFlags struct {
	EnvFile    string
	Env        string
	LogLevel   string
	DataDir    string
	BackupDir  string
	BackendURL string
	Timeout    string
	Strict     string
}

// SetStrict records an explicitly passed --strict flag.
func (f *ClientFlags) SetStrict(v bool) {
	f.Strict = strconv.FormatBool(v)
}

// LoadClientConfig loads client configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadClientConfig(flags ClientFlags) (*ClientConfig, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "warn"),
		},
		Storage: StorageConfig{
			DataDir:   getConfigValue(flags.DataDir, "DATA_DIR", "~/.mydiary"),
			BackupDir: getConfigValue(flags.BackupDir, "BACKUP_DIR", ""),
		},
		Backend: BackendConfig{
			URL:    getConfigValue(flags.BackendURL, "BACKEND_URL", ""),
			Strict: getBoolConfigValue(flags.Strict, "STRICT_CLOUD", false),
		},
	}

	timeout, err := getDurationConfigValue(flags.Timeout, "REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Backend.Timeout = timeout

	if cfg.Storage.DataDir, err = expandPath(cfg.Storage.DataDir, ""); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	if cfg.Storage.BackupDir, err = expandPath(cfg.Storage.BackupDir, filepath.Join(cfg.Storage.DataDir, "backups")); err != nil {
		return nil, fmt.Errorf("invalid backup dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *ClientConfig) Validate() error {
	if err := validateCommon(c.App, c.Logger); err != nil {
		return err
	}
	if c.Storage.DataDir == "" {
		return errors.New("data dir cannot be empty")
	}
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid backend URL: %q", c.Backend.URL)
		}
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

// Offline reports whether no hosted backend is configured.
func (c *ClientConfig) Offline() bool {
	return c.Backend.URL == ""
}
