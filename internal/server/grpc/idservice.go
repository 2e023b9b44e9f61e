package grpcserver

import (
	"context"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	idsvc "github.com/rzbill/flake/internal/services/ids"
)

// The IdService surface is small enough that its wire types are all
// well-known protobuf messages, so the service is registered with a
// hand-rolled descriptor instead of generated stubs. IDs travel as
// UInt64Value; batches and decode results use ListValue/Struct, with IDs
// rendered as decimal strings inside them because Value carries numbers
// as float64.
type idServer interface {
	Generate(context.Context, *emptypb.Empty) (*wrapperspb.UInt64Value, error)
	GenerateBatch(context.Context, *wrapperspb.UInt32Value) (*structpb.ListValue, error)
	Decode(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

type idService struct {
	ids *idsvc.Service
}

func (s *idService) Generate(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.UInt64Value, error) {
	return wrapperspb.UInt64(s.ids.NewID(ctx, "grpc", "")), nil
}

func (s *idService) GenerateBatch(ctx context.Context, req *wrapperspb.UInt32Value) (*structpb.ListValue, error) {
	count := int(req.GetValue())
	if count > idsvc.MaxBatch {
		return nil, status.Errorf(codes.InvalidArgument, "count %d exceeds %d", count, idsvc.MaxBatch)
	}
	ids := s.ids.NewBatch(ctx, count, "grpc", "")
	vals := make([]*structpb.Value, len(ids))
	for i, id := range ids {
		vals[i] = structpb.NewStringValue(strconv.FormatUint(id, 10))
	}
	return &structpb.ListValue{Values: vals}, nil
}

func (s *idService) Decode(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	d := s.ids.Decode(req.GetValue())
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(strconv.FormatUint(d.ID, 10)),
		"tsMs":     structpb.NewNumberValue(float64(d.TimestampMs)),
		"shardId":  structpb.NewNumberValue(float64(d.ShardID)),
		"sequence": structpb.NewNumberValue(float64(d.Sequence)),
	}}, nil
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(idServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flake.v1.IdService/Generate"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(idServer).Generate(ctx, req.(*emptypb.Empty))
	})
}

func generateBatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.UInt32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(idServer).GenerateBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flake.v1.IdService/GenerateBatch"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(idServer).GenerateBatch(ctx, req.(*wrapperspb.UInt32Value))
	})
}

func decodeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(idServer).Decode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flake.v1.IdService/Decode"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(idServer).Decode(ctx, req.(*wrapperspb.UInt64Value))
	})
}

var idServiceDesc = grpc.ServiceDesc{
	ServiceName: "flake.v1.IdService",
	HandlerType: (*idServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
		{MethodName: "GenerateBatch", Handler: generateBatchHandler},
		{MethodName: "Decode", Handler: decodeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flake/v1/id_service.proto",
}
