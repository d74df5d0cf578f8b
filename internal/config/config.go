// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

// Package config loads process-wide configuration from an optional YAML
// file and command-line flags. Flags win over the file; secrets missing
// from both fall back to the environment.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds everything the serve and migrate commands consume. The
// auth subsystem only ever reads it, never computes it.
type Config struct {
	// Env is the deployment mode; "prod" enables production behavior
	// such as the Secure cookie attribute.
	Env string `koanf:"env"`

	ListenAddr  string `koanf:"listen_addr"`
	MetricsAddr string `koanf:"metrics_addr"`

	DatabaseURL string `koanf:"database_url"`
	RedisURL    string `koanf:"redis_url"`

	// SessionSecret signs session cookies. Sourced from config or the
	// SESSION_SECRET environment variable, never a literal in code.
	SessionSecret string `koanf:"session_secret"`

	CORSOrigin string `koanf:"cors_origin"`
	LogFormat  string `koanf:"log_format"`
}

// Load builds the Config: YAML file (when path is non-empty), then
// flags on top. Flag keys use dashes and map to the underscored koanf
// keys; flags that were not set on the command line do not override
// file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	// Secrets and connection strings may live in the environment only.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}

	return &cfg, nil
}

// Validate checks the fields the serve command cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag, file, or DATABASE_URL)")
	}
	if c.RedisURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("redis_url is required (flag, file, or REDIS_URL)")
	}
	if c.SessionSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("session_secret is required (flag, file, or SESSION_SECRET)")
	}
	return nil
}

// IsProd reports whether the process runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}
