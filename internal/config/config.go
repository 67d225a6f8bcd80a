/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads entityseed's runtime configuration from the
// environment, an optional .env file and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported backends.
const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config holds all configuration options for entityseed.
type Config struct {
	Backend  string    `mapstructure:"backend"`  // "sqlite" (default) or "dynamodb"
	Database string    `mapstructure:"database"` // SQLite database path or DSN
	AWS      AWSConfig `mapstructure:"aws"`
	Log      LogConfig `mapstructure:"log"`
}

// AWSConfig holds the DynamoDB connection settings.
type AWSConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Table     string `mapstructure:"table"`
	Endpoint  string `mapstructure:"endpoint"` // DynamoDB Local or LocalStack
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // "text" (default) or "json"
}

// envBindings maps config keys to the environment variables they are read from.
var envBindings = map[string]string{
	"backend":        "ENTITYSEED_BACKEND",
	"database":       "ENTITYSEED_DATABASE",
	"aws.region":     "AWS_REGION",
	"aws.access_key": "AWS_ACCESS_KEY",
	"aws.secret_key": "AWS_SECRET_KEY",
	"aws.table":      "AWS_DDB_TABLE",
	"aws.endpoint":   "AWS_DDB_ENDPOINT",
	"log.level":      "ENTITYSEED_LOG_LEVEL",
	"log.format":     "ENTITYSEED_LOG_FORMAT",
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Backend:  BackendSQLite,
		Database: "entityseed.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads envFile (when it exists) into the process environment and
// unmarshals v into a Config. Flags bound to v take precedence over the
// environment, which takes precedence over the defaults.
func Load(v *viper.Viper, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	defaults := Defaults()
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("database", defaults.Database)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, cfg.Validate()
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.Database == "" {
			return fmt.Errorf("backend %s requires a database path (ENTITYSEED_DATABASE)", c.Backend)
		}
	case BackendDynamoDB:
		if c.AWS.Table == "" {
			return fmt.Errorf("backend %s requires a table (AWS_DDB_TABLE)", c.Backend)
		}
		if c.AWS.Region == "" {
			return fmt.Errorf("backend %s requires a region (AWS_REGION)", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q (expected %s or %s)", c.Backend, BackendSQLite, BackendDynamoDB)
	}
	return nil
}

// NewLogger creates a slog.Logger writing to w at the configured level and
// format. It does not set the global logger.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(c.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
