package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/rzbill/flake/internal/config"
	"github.com/rzbill/flake/internal/journal"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/pkg/flake"
	logpkg "github.com/rzbill/flake/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage, the ID generator, and the issuance journal for a
// single-node instance.
type Runtime struct {
	db      *pebblestore.DB
	gen     *flake.Generator
	journal *journal.Journal
	config  cfgpkg.Config
	logger  logpkg.Logger
}

// Open initializes the underlying storage, builds the generator from the
// configured shard, and opens the issuance journal when enabled.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}

	var gen *flake.Generator
	if opts.Config.ShardID >= 0 {
		gen = flake.NewWithShard(uint16(opts.Config.ShardID))
	} else {
		gen = flake.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("runtime"))
	}

	rt := &Runtime{db: db, gen: gen, config: opts.Config, logger: logger}
	if opts.Config.Journal.Enabled {
		j, err := journal.Open(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		rt.journal = j
	}
	logger.Info("runtime open", logpkg.Int("shard", int(gen.ShardID())), logpkg.Bool("journal", rt.journal != nil))
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Generator returns the process-wide ID generator.
func (r *Runtime) Generator() *flake.Generator { return r.gen }

// Journal returns the issuance journal, or nil when disabled.
func (r *Runtime) Journal() *journal.Journal { return r.journal }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// RunRetention trims issuance records older than the configured retention
// window on a fixed interval until ctx is canceled. It is a no-op when the
// journal is disabled or retention is unbounded.
func (r *Runtime) RunRetention(ctx context.Context) {
	jc := r.config.Journal
	if r.journal == nil || jc.RetentionHours <= 0 {
		return
	}
	interval := time.Duration(jc.TrimIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := uint64(time.Now().Add(-time.Duration(jc.RetentionHours) * time.Hour).UnixMilli())
			deleted, err := r.journal.TrimOlderThan(ctx, cutoff, jc.TrimBatch, 10*time.Millisecond)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warn("journal trim failed", logpkg.Err(err))
				continue
			}
			if deleted > 0 {
				r.logger.Info("journal trimmed", logpkg.Int("deleted", deleted))
			}
		}
	}
}
