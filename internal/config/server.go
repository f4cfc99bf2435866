package config

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ServerConfig configures the hosted backend.
type ServerConfig struct {
	App      AppConfig
	Logger   LoggerConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	DataDir  string // token key and the default SQLite file live here
}

// HTTPConfig holds listener and middleware configuration.
type HTTPConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins for the web client
	DevMode        bool          // Return password reset tokens in responses
	AuthPerMinute  int           // Auth requests per minute per IP (default: 20)
	AuthBurst      int           // Auth request burst per IP (default: 10)
}

// DatabaseConfig selects the hosted store.
type DatabaseConfig struct {
	Dialect string // sqlite or postgres
	DSN     string // file path for SQLite, connection URL for Postgres
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenKeyHex overrides the generated {DataDir}/token.key.
	TokenKeyHex          string
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
	ResetTokenDuration   time.Duration // e.g., 1h
}

// LoadServerConfig loads backend configuration from args (without the
// program name) with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadServerConfig(args []string) (*ServerConfig, error) {
	fs := flag.NewFlagSet("diaryd", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "Directory for the token key and SQLite database")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("cors-origins", "", "Comma-separated CORS origins")
	devMode := fs.String("dev-mode", "", "Return reset tokens in responses (default: false)")
	authPerMinute := fs.String("auth-rate", "", "Auth requests per minute per IP (default: 20)")
	authBurst := fs.String("auth-burst", "", "Auth request burst per IP (default: 10)")

	dialect := fs.String("db-dialect", "", "Database dialect: sqlite or postgres (default: sqlite)")
	dsn := fs.String("db-dsn", "", "SQLite file or Postgres URL")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	resetTokenDuration := fs.String("reset-token-duration", "", "Password reset token lifetime (e.g., 1h)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFile(*envFile); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Port:           getConfigValue(*port, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*origins, "CORS_ORIGINS", "")),
			DevMode:        getBoolConfigValue(*devMode, "DEV_MODE", false),
		},
		Database: DatabaseConfig{
			Dialect: strings.ToLower(getConfigValue(*dialect, "DB_DIALECT", "sqlite")),
			DSN:     getConfigValue(*dsn, "DB_DSN", ""),
		},
		Auth: AuthConfig{
			TokenKeyHex: getConfigValue("", "TOKEN_KEY", ""),
		},
		DataDir: getConfigValue(*dataDir, "DATA_DIR", "~/.mydiary-server"),
	}

	var err error
	if cfg.HTTP.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTP.AuthPerMinute, err = getIntConfigValue(*authPerMinute, "AUTH_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.HTTP.AuthBurst, err = getIntConfigValue(*authBurst, "AUTH_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Auth.RefreshTokenDuration, err = getDurationConfigValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.ResetTokenDuration, err = getDurationConfigValue(*resetTokenDuration, "RESET_TOKEN_DURATION", time.Hour); err != nil {
		return nil, err
	}

	if cfg.DataDir, err = expandPath(cfg.DataDir, ""); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Dialect == "sqlite" {
		cfg.Database.DSN = filepath.Join(cfg.DataDir, "diary.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *ServerConfig) Validate() error {
	if err := validateCommon(c.App, c.Logger); err != nil {
		return err
	}
	if c.DataDir == "" {
		return errors.New("data dir cannot be empty")
	}

	switch c.Database.Dialect {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New(EnvPrefix + "DB_DSN is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database dialect: %s (must be sqlite or postgres)", c.Database.Dialect)
	}

	if c.HTTP.AuthPerMinute <= 0 || c.HTTP.AuthBurst <= 0 {
		return errors.New("auth rate limit and burst must be positive")
	}
	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 || c.Auth.ResetTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.Auth.RefreshTokenDuration < c.Auth.AccessTokenDuration {
		return errors.New("refresh token duration must not be shorter than access token duration")
	}
	if c.App.Environment == "production" && c.HTTP.DevMode {
		return errors.New("dev mode cannot be enabled in production")
	}
	return nil
}

// Addr is the listen address.
func (c *ServerConfig) Addr() string {
	return ":" + c.HTTP.Port
}

// AuthRatePerSecond converts the configured per-minute auth limit.
func (c *ServerConfig) AuthRatePerSecond() float64 {
	return float64(c.HTTP.AuthPerMinute) / 60.0
}
