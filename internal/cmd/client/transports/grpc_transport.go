package transports

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GrpcTransport implements IDTransport over gRPC. The IdService exchanges
// well-known protobuf types, so calls go through Invoke with the method
// path rather than generated stubs.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) invoke(ctx context.Context, method string, in, out any) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return conn.Invoke(ctx, method, in, out)
}

// Generate mints one ID via gRPC.
func (t *GrpcTransport) Generate(ctx context.Context) (uint64, error) {
	out := new(wrapperspb.UInt64Value)
	if err := t.invoke(ctx, "/flake.v1.IdService/Generate", &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// GenerateBatch mints count IDs via gRPC. The wire batch call carries no
// tag; use the HTTP transport to tag journal records.
func (t *GrpcTransport) GenerateBatch(ctx context.Context, count int, _ string) ([]uint64, error) {
	out := new(structpb.ListValue)
	if err := t.invoke(ctx, "/flake.v1.IdService/GenerateBatch", wrapperspb.UInt32(uint32(count)), out); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		id, err := strconv.ParseUint(v.GetStringValue(), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode splits an ID via gRPC.
func (t *GrpcTransport) Decode(ctx context.Context, id uint64) (Decoded, error) {
	out := new(structpb.Struct)
	if err := t.invoke(ctx, "/flake.v1.IdService/Decode", wrapperspb.UInt64(id), out); err != nil {
		return Decoded{}, err
	}
	f := out.GetFields()
	parsed, err := strconv.ParseUint(f["id"].GetStringValue(), 10, 64)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{
		ID:          parsed,
		TimestampMs: uint64(f["tsMs"].GetNumberValue()),
		ShardID:     uint16(f["shardId"].GetNumberValue()),
		Sequence:    uint16(f["sequence"].GetNumberValue()),
	}, nil
}

// QueryJournal is not exposed over gRPC.
func (t *GrpcTransport) QueryJournal(ctx context.Context, _ JournalQuery) ([]JournalEntry, uint64, error) {
	return nil, 0, errors.New("journal query requires the HTTP transport")
}
