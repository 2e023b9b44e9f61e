// Package config defines flake's declarative configuration: shard
// assignment and issuance-journal policy, loaded from a JSON file with
// FLAKE_* environment overlays applied on top.
package config
