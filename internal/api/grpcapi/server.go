package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Ellipz/ManaSourceCalc/internal/service"
)

// Server hosts the Simulator and health services on one listener.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	log        zerolog.Logger
}

// NewServer wraps lis. The caller keeps no ownership of lis afterwards.
func NewServer(lis net.Listener, svc *service.Service, logger zerolog.Logger) *Server {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	RegisterSimulatorServer(grpcServer, NewSimulator(svc, logger))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Server{listener: lis, grpcServer: grpcServer, health: healthServer, log: logger}
}

// Listen opens addr and returns a server for it.
func Listen(addr string, svc *service.Service, logger zerolog.Logger) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServer(lis, svc, logger), nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve blocks until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	s.log.Info().Str("addr", s.Addr()).Msg("grpc server listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return stopErr(<-serveErr)
	case err := <-serveErr:
		return stopErr(err)
	}
}

func stopErr(err error) error {
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}
