package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLAKE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("FLAKE_SHARD_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= ShardDerived {
			cfg.ShardID = n
		}
	}
	if v := os.Getenv("FLAKE_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if v := os.Getenv("FLAKE_JOURNAL_RETENTION_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Journal.RetentionHours = n
		}
	}
	if v := os.Getenv("FLAKE_JOURNAL_TRIM_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Journal.TrimBatch = n
		}
	}
	if v := os.Getenv("FLAKE_JOURNAL_TRIM_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Journal.TrimIntervalSeconds = n
		}
	}
}
