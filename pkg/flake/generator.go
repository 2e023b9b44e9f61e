package flake

import (
	"os"
	"sync"
	"time"
)

// NowMs returns the current wall-clock time in Unix milliseconds.
var NowMs = func() uint64 { return uint64(time.Now().UnixMilli()) }

// overflowWait is how long Next sleeps, lock released, when the sequence for
// the current millisecond is exhausted. It only needs to be long enough for
// the millisecond boundary to advance.
const overflowWait = time.Millisecond

// Generator issues IDs for a single shard. It is safe for concurrent use;
// the (lastMs, seq) pair is mutated only inside Next's critical section.
// A Generator never spans processes and shares no state with other
// Generators, so uniqueness holds per shard ID only.
type Generator struct {
	shardID uint16

	mu     sync.Mutex
	lastMs uint64
	seq    uint16
}

// New returns a Generator with a shard ID derived from host and process
// identity. See DeriveShardID for the derivation contract.
func New() *Generator {
	return NewWithShard(DeriveShardID())
}

// NewWithShard returns a Generator with an explicit shard ID. Values above
// 13 bits are silently masked: NewWithShard(10000).ShardID() == 1808.
// Callers wanting strict validation must check against MaxShardID first.
func NewWithShard(shard uint16) *Generator {
	return &Generator{shardID: shard & MaxShardID}
}

// ShardID returns the shard this generator encodes into every ID. Immutable
// for the generator's lifetime.
func (g *Generator) ShardID() uint16 {
	return g.shardID
}

// Next returns the next ID. It never fails: sequence exhaustion within a
// millisecond is absorbed by waiting out the boundary (bounding throughput
// at 1024 IDs per millisecond), and a regressing clock is held at the last
// seen millisecond so IDs never go backwards.
func (g *Generator) Next() uint64 {
	for {
		g.mu.Lock()
		now := safeNowMs()
		if now < g.lastMs {
			// Clock regressed (NTP step, VM migration). Hold the last
			// millisecond; the sequence budget and the overflow wait below
			// stall callers until the wall clock catches up.
			now = g.lastMs
		}
		if now == g.lastMs {
			if g.seq >= MaxSequence {
				g.mu.Unlock()
				time.Sleep(overflowWait)
				continue
			}
			g.seq++
			id := Encode(now, g.shardID, g.seq)
			g.mu.Unlock()
			return id
		}
		g.lastMs = now
		g.seq = 0
		id := Encode(now, g.shardID, 0)
		g.mu.Unlock()
		return id
	}
}

// safeNowMs reads the clock and substitutes a deterministic fallback when
// the reported time predates the custom epoch, so Encode never underflows
// and generation never aborts. IDs emitted during such a fault window are
// unique but not time-ordered.
func safeNowMs() uint64 {
	now := NowMs()
	if now < CustomEpochMs {
		ent := uint64(fallbackEntropy()) ^ uint64(os.Getpid())<<16
		return CustomEpochMs + ent&maxTimestamp
	}
	return now
}
