// Package journal implements flake's issuance journal: an optional,
// append-only record of IDs issued by this process, persisted in Pebble.
//
// # Overview
//
// Entries are keyed by the issued ID itself, big-endian:
//   - j/e/{id_be8}  one entry per issued ID
//   - j/m           metadata (total appended count)
//
// Because an ID's leading bits are its timestamp, key order equals issuance
// order and time-range queries are plain range scans between encoded ID
// bounds; no secondary index exists or is needed.
//
// The journal records issued IDs only. It is never read back to seed a
// generator; generator state is deliberately not persisted.
//
// API surface (internal)
//
//	j, _ := Open(db)
//	_ = j.Append(ctx, ids, Meta{Source: "http"})
//	entries, next := j.Query(QueryOptions{StartMs: from, EndMs: to, Limit: 100})
//	_ = next // resume cursor
//	deleted, _ := j.TrimOlderThan(ctx, cutoffMs, 1024, 0)
package journal
