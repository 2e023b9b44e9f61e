package client

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcAddrFromEnv returns the gRPC server address from FLAKE_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("FLAKE_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the Flake gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(ctx context.Context) (*grpc.ClientConn, error) {
	addr := grpcAddrFromEnv()
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// parseTimeMs accepts a unix epoch in milliseconds or an RFC3339 timestamp.
func parseTimeMs(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return uint64(t.UnixMilli()), nil
	}
	return 0, fmt.Errorf("invalid time %q; expected ms or RFC3339", s)
}
