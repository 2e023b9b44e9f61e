package journal

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
)

// Entry is one decoded issuance record.
type Entry struct {
	ID       uint64
	IssuedMs uint64
	Meta     Meta
}

// Journal provides append and range-query operations over issuance records.
type Journal struct {
	db *pebblestore.DB

	mu       sync.Mutex
	appended uint64
}

// Open initializes a Journal and loads the appended-total from metadata.
func Open(db *pebblestore.DB) (*Journal, error) {
	j := &Journal{db: db}
	if meta, err := db.Get(metaKey); err == nil && len(meta) >= 8 {
		j.appended = binary.BigEndian.Uint64(meta[:8])
	}
	return j, nil
}

// Append records the issued IDs as a single atomic batch. All IDs in one
// call share the same metadata and issuance timestamp.
func (j *Journal) Append(ctx context.Context, issuedMs uint64, ids []uint64, meta Meta) error {
	if len(ids) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	b := j.db.NewBatch()
	defer b.Close()

	val := EncodeEntry(issuedMs, meta)
	for _, id := range ids {
		if err := b.Set(KeyEntry(id), val, nil); err != nil {
			return err
		}
	}

	var mb [8]byte
	binary.BigEndian.PutUint64(mb[:], j.appended+uint64(len(ids)))
	if err := b.Set(metaKey, mb[:], nil); err != nil {
		return err
	}
	if err := j.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	j.appended += uint64(len(ids))
	return nil
}

// AppendedTotal returns how many issuance records have ever been appended,
// including ones since trimmed.
func (j *Journal) AppendedTotal() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.appended
}

// QueryOptions selects a time range of issuance records.
type QueryOptions struct {
	// StartMs and EndMs bound the issuance time range, inclusive on both
	// ends. Zero StartMs means from the beginning; zero EndMs means no
	// upper bound.
	StartMs uint64
	EndMs   uint64
	// AfterID resumes a previous query: only IDs strictly greater are
	// returned. This is the cursor token from a prior call.
	AfterID uint64
	// Limit caps the number of returned entries; 0 means no cap.
	Limit int
}

// Query scans entries in ID (and therefore time) order. The second return
// is a resume cursor: pass it as AfterID to continue, 0 when the range is
// exhausted.
func (j *Journal) Query(opts QueryOptions) ([]Entry, uint64) {
	lowID := timeLowerBound(opts.StartMs)
	if opts.AfterID == ^uint64(0) {
		// Nothing can sort after an all-ones cursor. Tokens arrive from
		// untrusted callers, so this cannot be left to wraparound.
		return make([]Entry, 0), 0
	}
	if opts.AfterID != 0 && opts.AfterID >= lowID {
		// Resume strictly after the cursor.
		lowID = opts.AfterID + 1
	}
	lower := KeyEntry(lowID)
	var upper []byte
	if opts.EndMs != 0 {
		upper = append(KeyEntry(timeUpperBound(opts.EndMs)), 0x00)
	} else {
		upper = append(KeyEntry(^uint64(0)), 0x00)
	}

	entries := make([]Entry, 0, 64)
	iter, err := j.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return entries, 0
	}
	defer iter.Close()

	for ok := iter.First(); ok; ok = iter.Next() {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			// More remain; hand back the last delivered ID as the cursor.
			return entries, entries[len(entries)-1].ID
		}
		issuedMs, meta, okDec := DecodeEntry(iter.Value())
		if !okDec {
			continue
		}
		entries = append(entries, Entry{ID: EntryID(iter.Key()), IssuedMs: issuedMs, Meta: meta})
	}
	return entries, 0
}
