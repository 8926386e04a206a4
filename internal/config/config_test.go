package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:      "local",
		LogLevel:         "info",
		BaseURL:          "http://127.0.0.1:3000/api/product",
		FetchConcurrency: 10,
		FetchTimeout:     15 * time.Second,
		OutputDir:        "data",
		DBMinConns:       1,
		DBMaxConns:       4,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Config){
		"empty base url":        func(c *Config) { c.BaseURL = "  " },
		"zero concurrency":      func(c *Config) { c.FetchConcurrency = 0 },
		"sub-second timeout":    func(c *Config) { c.FetchTimeout = 100 * time.Millisecond },
		"empty output dir":      func(c *Config) { c.OutputDir = "" },
		"negative min conns":    func(c *Config) { c.DBMinConns = -1 },
		"zero max conns":        func(c *Config) { c.DBMaxConns = 0 },
		"min conns exceeds max": func(c *Config) { c.DBMinConns = 8; c.DBMaxConns = 2 },
	}

	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestArchiveConfigured(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.ArchiveConfigured() {
		t.Fatalf("expected archive unconfigured without DATABASE_URL")
	}
	cfg.DatabaseURL = "postgres://localhost/shelfpull"
	if !cfg.ArchiveConfigured() {
		t.Fatalf("expected archive configured")
	}
	cfg.DatabaseURL = "   "
	if cfg.ArchiveConfigured() {
		t.Fatalf("whitespace DATABASE_URL must not count as configured")
	}
}
