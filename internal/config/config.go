// Package config loads the exporter settings record.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, an optional YAML file, and SLACK_EXPORT_* environment
// variables. Credentials (SLACK_TOKEN, SLACK_COOKIE) are read from the
// environment by the caller and are not part of this record.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the flat settings record for a single export run.
type Config struct {
	DownloadDirectory    string `koanf:"download_directory"`
	FileNameFormat       string `koanf:"file_name_format"`
	IncludeTimestamps    bool   `koanf:"include_timestamps"`
	IncludeThreadReplies bool   `koanf:"include_thread_replies"`
	HistoryDays          int    `koanf:"history_days"`

	// LastExportTS is a marker for future incremental exports. It is
	// persisted in the record but not consulted by the export pipeline.
	LastExportTS string `koanf:"last_export_ts"`

	Retry Retry `koanf:"retry"`
}

// Retry holds the rate-limit and pacing tunables. The platform's actual
// limits are not documented anywhere, so none of these are hard-coded in
// the pipeline.
type Retry struct {
	MaxAttempts      int           `koanf:"max_attempts"`
	BackoffBase      time.Duration `koanf:"backoff_base"`
	PageDelay        time.Duration `koanf:"page_delay"`
	PageLimit        int           `koanf:"page_limit"`
	UserBatchSize    int           `koanf:"user_batch_size"`
	UserRequestDelay time.Duration `koanf:"user_request_delay"`
	UserBatchDelay   time.Duration `koanf:"user_batch_delay"`
}

// defaultYAML is the built-in configuration, loaded before any file or
// environment overrides.
var defaultYAML = []byte(`
download_directory: ""
file_name_format: "{channel}-YYYY-MM-DD"
include_timestamps: true
include_thread_replies: true
history_days: 7
last_export_ts: ""
retry:
  max_attempts: 3
  backoff_base: 2s
  page_delay: 1s
  page_limit: 100
  user_batch_size: 10
  user_request_delay: 100ms
  user_batch_delay: 500ms
`)

// envPrefix guards against unrelated variables leaking into the record.
const envPrefix = "SLACK_EXPORT_"

// Load builds the settings record. configPath may be empty, in which case
// only defaults and environment overrides apply. A configPath that points
// at a missing file is an error; an empty one is not.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	// SLACK_EXPORT_HISTORY_DAYS -> history_days
	// SLACK_EXPORT_RETRY_MAX_ATTEMPTS -> retry.max_attempts
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if rest, ok := strings.CutPrefix(key, "retry_"); ok {
			return "retry." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects records the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive, got %d", c.HistoryDays)
	}
	if c.FileNameFormat == "" {
		return fmt.Errorf("file_name_format must not be empty")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.PageLimit <= 0 || c.Retry.PageLimit > 1000 {
		return fmt.Errorf("retry.page_limit must be in (0, 1000], got %d", c.Retry.PageLimit)
	}
	if c.Retry.UserBatchSize <= 0 {
		return fmt.Errorf("retry.user_batch_size must be positive, got %d", c.Retry.UserBatchSize)
	}
	return nil
}

// Oldest returns the inclusive lower time bound of the export window.
func (c *Config) Oldest(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.HistoryDays)
}
