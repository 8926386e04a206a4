package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	BaseURL          string        `envconfig:"SP_BASE_URL" default:"http://127.0.0.1:3000/api/product"`
	FetchConcurrency int           `envconfig:"SP_FETCH_CONCURRENCY" default:"10"`
	FetchTimeout     time.Duration `envconfig:"SP_FETCH_TIMEOUT" default:"15s"`
	OutputDir        string        `envconfig:"SP_OUTPUT_DIR" default:"data"`

	// DatabaseURL is only needed when the raw-payload archive is enabled.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"SP_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"SP_DB_MAX_CONNS" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("SP_BASE_URL is required")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("SP_FETCH_CONCURRENCY must be >= 1")
	}
	if c.FetchTimeout < time.Second {
		return fmt.Errorf("SP_FETCH_TIMEOUT must be >= 1s")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("SP_OUTPUT_DIR is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("SP_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("SP_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("SP_DB_MIN_CONNS (%d) cannot exceed SP_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// ArchiveConfigured reports whether a database URL is present, which is the
// precondition for the raw-payload archive and the health command.
func (c *Config) ArchiveConfigured() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}
