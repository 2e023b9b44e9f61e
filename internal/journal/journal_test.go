package journal

import (
	"context"
	"testing"

	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/pkg/flake"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	j, err := Open(db)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	return j
}

func idsAt(tsMs uint64, shard uint16, n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = flake.Encode(tsMs, shard, uint16(i))
	}
	return ids
}

func TestAppendAndQuery(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	ts := flake.CustomEpochMs + 10_000
	ids := idsAt(ts, 42, 5)
	if err := j.Append(ctx, ts, ids, Meta{Source: "http"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, next := j.Query(QueryOptions{})
	if len(entries) != 5 {
		t.Fatalf("got %d entries", len(entries))
	}
	if next != 0 {
		t.Fatalf("expected exhausted cursor, got %d", next)
	}
	for i, e := range entries {
		if e.ID != ids[i] {
			t.Fatalf("order: entry %d is %d want %d", i, e.ID, ids[i])
		}
		if e.IssuedMs != ts || e.Meta.Source != "http" {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}
	if j.AppendedTotal() != 5 {
		t.Fatalf("appended total: %d", j.AppendedTotal())
	}
}

func TestQueryTimeRange(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	early := flake.CustomEpochMs + 1000
	mid := flake.CustomEpochMs + 2000
	late := flake.CustomEpochMs + 3000
	for _, ts := range []uint64{early, mid, late} {
		if err := j.Append(ctx, ts, idsAt(ts, 1, 2), Meta{}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, _ := j.Query(QueryOptions{StartMs: mid, EndMs: mid})
	if len(entries) != 2 {
		t.Fatalf("mid range: got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.IssuedMs != mid {
			t.Fatalf("out-of-range entry: %+v", e)
		}
	}

	entries, _ = j.Query(QueryOptions{StartMs: mid})
	if len(entries) != 4 {
		t.Fatalf("open-ended range: got %d", len(entries))
	}
}

func TestQueryPagination(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	ts := flake.CustomEpochMs + 500
	ids := idsAt(ts, 3, 10)
	if err := j.Append(ctx, ts, ids, Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var got []uint64
	var cursor uint64
	for {
		entries, next := j.Query(QueryOptions{AfterID: cursor, Limit: 3})
		for _, e := range entries {
			got = append(got, e.ID)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	if len(got) != 10 {
		t.Fatalf("paginated total: %d", len(got))
	}
	for i, id := range got {
		if id != ids[i] {
			t.Fatalf("pagination order at %d", i)
		}
	}
}

func TestQueryMaxCursorIsEmpty(t *testing.T) {
	j := newTestJournal(t)
	ts := flake.CustomEpochMs + 500
	if err := j.Append(context.Background(), ts, idsAt(ts, 1, 3), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// An all-ones token must yield an empty page, not wrap around and
	// restart the scan.
	entries, next := j.Query(QueryOptions{AfterID: ^uint64(0)})
	if len(entries) != 0 {
		t.Fatalf("got %d entries after max cursor", len(entries))
	}
	if next != 0 {
		t.Fatalf("cursor: %d", next)
	}
}

func TestQuerySkipsCorruptValue(t *testing.T) {
	j := newTestJournal(t)
	ts := flake.CustomEpochMs + 500
	ids := idsAt(ts, 1, 3)
	if err := j.Append(context.Background(), ts, ids, Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Overwrite one value with garbage claiming an enormous header.
	if err := j.db.Set(KeyEntry(ids[1]), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0x00}); err != nil {
		t.Fatalf("set: %v", err)
	}

	entries, _ := j.Query(QueryOptions{})
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.ID == ids[1] {
			t.Fatalf("corrupt entry surfaced: %+v", e)
		}
	}
}

func TestOpenReloadsAppendedTotal(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	j, _ := Open(db)
	ts := flake.CustomEpochMs + 100
	if err := j.Append(context.Background(), ts, idsAt(ts, 1, 3), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db2.Close()
	j2, _ := Open(db2)
	if j2.AppendedTotal() != 3 {
		t.Fatalf("appended total after reopen: %d", j2.AppendedTotal())
	}
}
