package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ShardDerived selects automatic shard derivation from host/process identity.
const ShardDerived = -1

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// ShardID is the explicit 13-bit shard for this process, or ShardDerived
	// to derive one from host identity. Values above 8191 are masked by the
	// generator, not rejected.
	ShardID int `json:"shardId"`

	Journal JournalConfig `json:"journal"`
}

// JournalConfig controls the optional issuance journal.
type JournalConfig struct {
	// Enabled turns on recording of issued IDs.
	Enabled bool `json:"enabled"`
	// RetentionHours bounds how long issuance records are kept; 0 keeps them
	// indefinitely.
	RetentionHours int `json:"retentionHours"`
	// TrimBatch is the maximum number of deletes per trim commit.
	TrimBatch int `json:"trimBatch"`
	// TrimIntervalSeconds is how often the retention loop runs.
	TrimIntervalSeconds int `json:"trimIntervalSeconds"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		ShardID: ShardDerived,
		Journal: JournalConfig{
			Enabled:             true,
			RetentionHours:      168,
			TrimBatch:           1024,
			TrimIntervalSeconds: 300,
		},
	}
}

// Validate rejects configurations the runtime cannot honor.
func (c Config) Validate() error {
	if c.ShardID < ShardDerived {
		return fmt.Errorf("shardId must be >= 0 or %d for derived", ShardDerived)
	}
	if c.Journal.RetentionHours < 0 {
		return errors.New("journal.retentionHours must not be negative")
	}
	return nil
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
