package grpcserver

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rzbill/flake/internal/runtime"
	idsvc "github.com/rzbill/flake/internal/services/ids"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	ids    *idsvc.Service
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// New constructs a gRPC server and registers services.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	return NewWithService(rt, idsvc.New(rt), opts...)
}

// NewWithService builds the server around an existing service instance so
// both transports can share one.
func NewWithService(rt *runtime.Runtime, ids *idsvc.Service, opts ...grpc.ServerOption) *Server {
	s := &Server{rt: rt, ids: ids, grpc: grpc.NewServer(opts...), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.grpc.RegisterService(&idServiceDesc, &idService{ids: s.ids})
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
