// Package grpc exposes the standard gRPC health service, reporting the
// reachability of the backing store, plus server reflection for grpcurl.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentmarket-backend/internal/api/grpc/interceptor"
	"rentmarket-backend/internal/logger"
)

// ServiceName is the health service name reported for the marketplace API.
const ServiceName = "rentmarket.v1.Marketplace"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
	db     Pinger
}

// NewServer builds the gRPC server. A nil db is always reported healthy.
func NewServer(db Pinger) *Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptor.LoggingUnary()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Register reflection service for grpcurl
	reflection.Register(srv)

	s := &Server{srv: srv, health: hs, db: db}
	s.check(context.Background())
	return s
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// check pings the store once and publishes the result.
func (s *Server) check(ctx context.Context) {
	if s.db == nil {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		logger.Warn("Store ping failed, reporting NOT_SERVING", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Watch re-checks the store every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// GracefulStop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
