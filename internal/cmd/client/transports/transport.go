// Package transports provides pluggable transport implementations for the CLI.
package transports

import "context"

// Decoded is the component view of an ID returned by Decode.
type Decoded struct {
	ID          uint64
	TimestampMs uint64
	ShardID     uint16
	Sequence    uint16
}

// JournalEntry is one issuance record returned by QueryJournal.
type JournalEntry struct {
	ID       uint64
	TsMs     uint64
	ShardID  uint16
	Sequence uint16
	Source   string
	Tag      string
}

// JournalQuery selects issuance records server-side.
type JournalQuery struct {
	StartMs uint64
	EndMs   uint64
	Filter  string
	Limit   int
	Token   uint64
}

// IDTransport abstracts the transport used by the CLI (gRPC/HTTP).
type IDTransport interface {
	Generate(ctx context.Context) (uint64, error)
	GenerateBatch(ctx context.Context, count int, tag string) ([]uint64, error)
	Decode(ctx context.Context, id uint64) (Decoded, error)
	QueryJournal(ctx context.Context, q JournalQuery) ([]JournalEntry, uint64, error)
}
