package idsvc

import (
	"context"
	"fmt"

	"github.com/rzbill/flake/internal/journal"
	"github.com/rzbill/flake/internal/runtime"
	"github.com/rzbill/flake/pkg/flake"
	logpkg "github.com/rzbill/flake/pkg/log"
)

// MaxBatch caps how many IDs a single request may mint. It matches the
// sequence space of one millisecond so a full batch costs at most a couple
// of milliseconds of generator time.
const MaxBatch = 1024

// Service is the issuance facade consumed by the gRPC and HTTP transports.
// It mints IDs from the runtime's generator and, when the journal is
// enabled, records every issued ID with its metadata.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("ids"))
	}
	return &Service{rt: rt, logger: logger}
}

// Decoded is the component view of an ID.
type Decoded struct {
	ID          uint64 `json:"id,string"`
	TimestampMs uint64 `json:"tsMs"`
	ShardID     uint16 `json:"shardId"`
	Sequence    uint16 `json:"sequence"`
}

// NewID mints one ID. The source and tag are recorded in the journal when
// it is enabled; a journal failure is logged and does not fail issuance.
func (s *Service) NewID(ctx context.Context, source, tag string) uint64 {
	ids := s.NewBatch(ctx, 1, source, tag)
	return ids[0]
}

// NewBatch mints count IDs. Count is clamped to [1, MaxBatch].
func (s *Service) NewBatch(ctx context.Context, count int, source, tag string) []uint64 {
	if count < 1 {
		count = 1
	}
	if count > MaxBatch {
		count = MaxBatch
	}
	gen := s.rt.Generator()
	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = gen.Next()
	}
	s.record(ctx, ids, journal.Meta{Source: source, Tag: tag})
	return ids
}

// record journals the issued IDs, grouping consecutive IDs that share an
// issuance millisecond so each appended run carries its real timestamp.
func (s *Service) record(ctx context.Context, ids []uint64, meta journal.Meta) {
	j := s.rt.Journal()
	if j == nil || len(ids) == 0 {
		return
	}
	start := 0
	runMs := flake.DecodeTimestamp(ids[0])
	for i := 1; i <= len(ids); i++ {
		if i < len(ids) && flake.DecodeTimestamp(ids[i]) == runMs {
			continue
		}
		if err := j.Append(ctx, runMs, ids[start:i], meta); err != nil {
			s.logger.Warn("journal append failed", logpkg.Err(err), logpkg.Int("ids", i-start))
		}
		if i < len(ids) {
			start = i
			runMs = flake.DecodeTimestamp(ids[i])
		}
	}
}

// Decode splits an ID into its timestamp, shard, and sequence fields. Every
// 64-bit value decodes; there is no validity check to fail.
func (s *Service) Decode(id uint64) Decoded {
	return Decoded{
		ID:          id,
		TimestampMs: flake.DecodeTimestamp(id),
		ShardID:     flake.DecodeShard(id),
		Sequence:    flake.DecodeSequence(id),
	}
}

// ShardID reports the shard this instance mints into.
func (s *Service) ShardID() uint16 { return s.rt.Generator().ShardID() }

// QueryRequest selects issuance records from the journal.
type QueryRequest struct {
	// StartMs and EndMs bound issuance time, inclusive. Zero means
	// unbounded on that side.
	StartMs uint64
	EndMs   uint64
	// Filter is an optional CEL expression over shard, sequence, ts_ms,
	// source, tag, and now_ms.
	Filter string
	// Limit caps returned records (default and max 1000).
	Limit int
	// Token resumes a previous query.
	Token uint64
}

// QueryResult is one page of issuance records.
type QueryResult struct {
	Entries []journal.Entry
	// NextToken is non-zero when more records may remain.
	NextToken uint64
}

const defaultQueryLimit = 1000

// Query returns issuance records in ID order, optionally filtered by a CEL
// expression. Filtering happens after the time-range scan, so the cursor
// advances over skipped records too.
func (s *Service) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	j := s.rt.Journal()
	if j == nil {
		return QueryResult{}, fmt.Errorf("journal disabled")
	}
	filter, err := newCELFilter(req.Filter)
	if err != nil {
		return QueryResult{}, fmt.Errorf("invalid filter: %w", err)
	}
	limit := req.Limit
	if limit <= 0 || limit > defaultQueryLimit {
		limit = defaultQueryLimit
	}

	out := QueryResult{Entries: make([]journal.Entry, 0, 64)}
	cursor := req.Token
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		// Scan pages a bit larger than the remaining budget so sparse
		// filters do not force one storage pass per matched record.
		page := limit - len(out.Entries)
		if filter.enabled && page < 256 {
			page = 256
		}
		entries, next := j.Query(journal.QueryOptions{
			StartMs: req.StartMs,
			EndMs:   req.EndMs,
			AfterID: cursor,
			Limit:   page,
		})
		for _, e := range entries {
			if !filter.Eval(e) {
				continue
			}
			out.Entries = append(out.Entries, e)
			if len(out.Entries) >= limit {
				out.NextToken = e.ID
				return out, nil
			}
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
