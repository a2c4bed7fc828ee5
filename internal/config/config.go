// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/bookshelf/bookshelf/internal/auth"
)

// maxTokenMinutes keeps AccessTokenTTL within time.Duration.
const maxTokenMinutes = math.MaxInt64 / int64(time.Minute)

// Errors returned for invalid security settings.
var (
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrInvalidTokenLifetime = errors.New("access token lifetime out of range")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis). Empty disables the book cache.
	RedisURL string `env:"REDIS_URL"`

	// Token signing. No defaults: a missing value must stop the process.
	SecretKey                string `env:"SECRET_KEY,required,notEmpty,unset"`
	Algorithm                string `env:"ALGORITHM,required,notEmpty"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Browser origins allowed to call the API. Empty denies cross-origin requests.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AccessTokenTTL is the lifetime of tokens issued at login.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// TokenSettings returns the immutable signing configuration for the token codec.
func (c *Config) TokenSettings() auth.TokenConfig {
	return auth.TokenConfig{
		SecretKey: []byte(c.SecretKey),
		Algorithm: c.Algorithm,
	}
}

// Validate checks the security-relevant settings that struct tags cannot express.
func (c *Config) Validate() error {
	if !auth.IsSupportedAlgorithm(c.Algorithm) {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 || int64(c.AccessTokenExpireMinutes) > maxTokenMinutes {
		return ErrInvalidTokenLifetime
	}
	return nil
}

// Load reads an optional .env file, parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped;
// variables already present in the environment are never overridden.
func LoadFiles(paths ...string) (*Config, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
