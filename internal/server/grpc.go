package server

import (
	"context"
	"net"
	"time"

	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/session"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// SessionsService is the health service name that reports whether new
// sessions can be created.
const SessionsService = "koa.Sessions"

// GRPCServer serves the standard health service. The overall status follows
// the server lifecycle and SessionsService follows session capacity.
type GRPCServer struct {
	server      *grpc.Server
	health      *health.Server
	sessions    *session.Manager
	maxSessions int
	logger      *zap.Logger
}

// NewGRPCServer builds the gRPC server with recovery and logging interceptors.
func NewGRPCServer(cfg config.ServerConfig, sessions *session.Manager, logger *zap.Logger) *GRPCServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if cfg.GRPC.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)))
	}

	s := &GRPCServer{
		server:      grpc.NewServer(opts...),
		health:      health.NewServer(),
		sessions:    sessions,
		maxSessions: cfg.MaxSessions,
		logger:      logger,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.UpdateHealth()
	return s
}

// Server returns the underlying grpc.Server.
func (s *GRPCServer) Server() *grpc.Server {
	return s.server
}

// Serve accepts connections on lis until Stop is called.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("starting gRPC server", zap.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

// UpdateHealth reports SessionsService as not serving while the session
// manager is full.
func (s *GRPCServer) UpdateHealth() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.sessions != nil && s.maxSessions > 0 && s.sessions.Count() >= s.maxSessions {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(SessionsService, status)
}

// WatchSessions refreshes SessionsService every interval until ctx is done.
func (s *GRPCServer) WatchSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.UpdateHealth()
		}
	}
}

// Stop marks every service as not serving and drains open calls.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("gRPC server stopped")
}
