// Package flake implements a coordination-free, 64-bit, time-sortable ID
// generator in the Snowflake family.
//
// # Format
//
// An ID packs three fields, most significant first:
//   - 41 bits: milliseconds since 2024-01-01T00:00:00Z
//   - 13 bits: shard ID (0..8191), identifying the generating process/node
//   - 10 bits: sequence (0..1023), counter within one millisecond
//
// Numeric order equals issuance order for a single generator, and the
// leading timestamp bits make coarse time-range queries possible with plain
// integer comparison.
//
// # Monotonicity
//
// Generator guarantees strictly increasing IDs per instance:
//   - Within one millisecond the sequence counter increments; when it is
//     exhausted the caller waits out the millisecond boundary.
//   - If the system clock regresses, the generator holds the last seen
//     millisecond instead of going backwards, consuming the remaining
//     sequence budget until the wall clock catches up.
//
// Next never fails; a clock reading older than the custom epoch is replaced
// by a deterministic fallback so generation degrades instead of aborting.
//
// Usage
//
//	g := flake.NewWithShard(42) // or flake.New() to derive a shard
//	id := g.Next()
//	ts := flake.DecodeTimestamp(id) // Unix ms
package flake
