package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"orggov-backend/internal/api/grpc/interceptor"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/security"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the operational gRPC listener: health checking for load
// balancers and reflection for grpcurl.
type Server struct {
	*grpc.Server
	health *health.Server
}

func NewServer(tm security.TokenManager) *Server {
	auth := interceptor.NewAuthInterceptor(tm)
	s := grpc.NewServer(
		grpc.UnaryInterceptor(auth.Unary()),
		grpc.StreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &Server{Server: s, health: hs}
}

// SetServing flips the overall serving status.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
}

// WatchDependency polls p and mirrors its reachability into the health
// status until ctx is done.
func (s *Server) WatchDependency(ctx context.Context, p Pinger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		pingCtx, cancel := context.WithTimeout(ctx, every)
		err := p.PingContext(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("Dependency ping failed", "error", err)
		}
		s.SetServing(err == nil)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks the server not serving and drains in-flight RPCs.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
