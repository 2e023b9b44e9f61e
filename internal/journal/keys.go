package journal

import (
	"encoding/binary"

	"github.com/rzbill/flake/pkg/flake"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - j/e/{id_be8}  issuance entries
// - j/m           journal metadata

var (
	entryPrefix = []byte("j/e/")
	metaKey     = []byte("j/m")
)

// KeyEntry builds the entry key for an issued ID. Big-endian keeps key
// order equal to numeric ID order.
func KeyEntry(id uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return append(k, b[:]...)
}

// EntryID extracts the ID from an entry key.
func EntryID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(entryPrefix):])
}

// timeLowerBound returns the smallest ID encodable at tsMs; times before
// the custom epoch clamp to it.
func timeLowerBound(tsMs uint64) uint64 {
	if tsMs < flake.CustomEpochMs {
		tsMs = flake.CustomEpochMs
	}
	return flake.Encode(tsMs, 0, 0)
}

// timeUpperBound returns the largest ID encodable at tsMs.
func timeUpperBound(tsMs uint64) uint64 {
	if tsMs < flake.CustomEpochMs {
		tsMs = flake.CustomEpochMs
	}
	return flake.Encode(tsMs, flake.MaxShardID, flake.MaxSequence)
}
