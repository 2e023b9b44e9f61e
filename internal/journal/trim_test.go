package journal

import (
	"context"
	"testing"

	"github.com/rzbill/flake/pkg/flake"
)

func TestTrimOlderThan(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	old := flake.CustomEpochMs + 1000
	kept := flake.CustomEpochMs + 5000
	if err := j.Append(ctx, old, idsAt(old, 1, 4), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ctx, kept, idsAt(kept, 1, 3), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	deleted, err := j.TrimOlderThan(ctx, kept, 0, 0)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("deleted %d entries, want 4", deleted)
	}

	entries, _ := j.Query(QueryOptions{})
	if len(entries) != 3 {
		t.Fatalf("got %d surviving entries", len(entries))
	}
	for _, e := range entries {
		if e.IssuedMs != kept {
			t.Fatalf("trimmed range still present: %+v", e)
		}
	}

	// Appended total counts history, not live rows.
	if j.AppendedTotal() != 7 {
		t.Fatalf("appended total: %d", j.AppendedTotal())
	}
}

func TestTrimSmallBatches(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	ts := flake.CustomEpochMs + 1000
	if err := j.Append(ctx, ts, idsAt(ts, 2, 10), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	deleted, err := j.TrimOlderThan(ctx, ts+1, 3, 0)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 10 {
		t.Fatalf("deleted %d, want 10", deleted)
	}
	if entries, _ := j.Query(QueryOptions{}); len(entries) != 0 {
		t.Fatalf("expected empty journal, got %d entries", len(entries))
	}
}

func TestTrimNothingToDelete(t *testing.T) {
	j := newTestJournal(t)
	ts := flake.CustomEpochMs + 9000
	if err := j.Append(context.Background(), ts, idsAt(ts, 1, 2), Meta{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	deleted, err := j.TrimOlderThan(context.Background(), ts, 0, 0)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted %d, want 0", deleted)
	}
}
