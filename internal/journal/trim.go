package journal

import (
	"context"
	"time"

	"github.com/cockroachdb/pebble"
)

// TrimOlderThan deletes entries issued before cutoffMs. Because keys are
// timestamp-ordered IDs, the cutoff is a single key bound and no values
// need decoding. Deletes are committed in batches of up to batchLimit keys
// with an optional throttle between commits. Returns the number of deleted
// entries.
func (j *Journal) TrimOlderThan(ctx context.Context, cutoffMs uint64, batchLimit int, throttle time.Duration) (int, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}

	lower := KeyEntry(0)
	upper := KeyEntry(timeLowerBound(cutoffMs))

	deleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		iter, err := j.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
		if err != nil {
			return deleted, err
		}

		b := j.db.NewBatch()
		n := 0
		for ok := iter.First(); ok && n < batchLimit; ok = iter.Next() {
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				iter.Close()
				return deleted, err
			}
			n++
		}
		iter.Close()

		if n == 0 {
			b.Close()
			if deleted > 0 {
				// Reclaim the tombstoned range eagerly; retention trims are
				// the only bulk deletes in this keyspace.
				_ = j.db.CompactRange(lower, upper)
			}
			return deleted, nil
		}
		if err := j.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, err
		}
		b.Close()
		deleted += n
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
}
