package server

import (
	"fmt"
	"net"

	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer serves grpc.health.v1 so orchestrators can probe the process.
type GRPCServer struct {
	config     *conf.Config
	logger     *logger.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewGRPCServer registers the health and reflection services. Health checks
// are not logged.
func NewGRPCServer(config *conf.Config, log *logger.Logger) *GRPCServer {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RecoveryInterceptor(log),
			logger.UnaryServerInterceptor(log, healthpb.Health_Check_FullMethodName),
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	// grpcurl
	reflection.Register(grpcServer)

	return &GRPCServer{
		config:     config,
		logger:     log,
		grpcServer: grpcServer,
		health:     hs,
	}
}

// Enabled reports whether a gRPC port is configured.
func (s *GRPCServer) Enabled() bool {
	return s.config.Server.GRPCPort > 0
}

func (s *GRPCServer) Start() error {
	addr := s.config.Server.GRPCAddr()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("starting gRPC server", zap.String("addr", lis.Addr().String()))

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop flips health to NOT_SERVING before draining connections.
func (s *GRPCServer) Stop() {
	s.logger.Info("stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
