// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Blob backends.
const (
	BlobBackendFS  = "fs"
	BlobBackendGCS = "gcs"
)

// Config holds all runtime configuration. Every field maps 1:1 to an
// environment variable.
type Config struct {
	// Server
	Addr   string `mapstructure:"ADDR"`
	Env    string `mapstructure:"APP_ENV"` // development | production
	DBPath string `mapstructure:"DB_PATH"`

	// Auth
	OwnerToken              string `mapstructure:"OWNER_TOKEN"`
	OwnerTokenHash          string `mapstructure:"OWNER_TOKEN_HASH"`
	AcceptLegacyTokenHeader bool   `mapstructure:"ACCEPT_LEGACY_TOKEN_HEADER"`
	AllowedOrigin           string `mapstructure:"ALLOWED_ORIGIN"`

	// Blobs
	BlobBackend        string `mapstructure:"BLOB_BACKEND"`
	BlobDir            string `mapstructure:"BLOB_DIR"`
	GCSBucket          string `mapstructure:"GCS_BUCKET"`
	GCSCredentialsJSON string `mapstructure:"GCS_CREDENTIALS_JSON"`
	MaxUploadBytes     int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	// Idempotency
	RedisURL       string        `mapstructure:"REDIS_URL"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // json | console
}

// Load reads configuration from environment variables and an optional
// .env file in dir.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env-only values.
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_PATH", "resell.sqlite3")
	v.SetDefault("OWNER_TOKEN", "")
	v.SetDefault("OWNER_TOKEN_HASH", "")
	v.SetDefault("ACCEPT_LEGACY_TOKEN_HEADER", true)
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("BLOB_BACKEND", BlobBackendFS)
	v.SetDefault("BLOB_DIR", "blobs")
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GCS_CREDENTIALS_JSON", "")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Optional .env file for local development; a missing file is fine.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("ADDR must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	switch c.BlobBackend {
	case BlobBackendFS:
		if c.BlobDir == "" {
			return errors.New("BLOB_DIR must not be empty")
		}
	case BlobBackendGCS:
		if c.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when BLOB_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q (want fs or gcs)", c.BlobBackend)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive, got %s", c.IdempotencyTTL)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("unknown LOG_FORMAT %q (want json or console)", c.LogFormat)
	}
	if c.IsProduction() && c.OwnerToken == "" && c.OwnerTokenHash == "" {
		return errors.New("OWNER_TOKEN or OWNER_TOKEN_HASH is required when APP_ENV=production")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
