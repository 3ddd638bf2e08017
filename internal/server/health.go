package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// StorageService is the health service name reporting the storage backend.
const StorageService = "chance.storage"

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// HealthServer serves the standard gRPC health protocol. A background loop
// runs probe every interval and flips both the overall status and
// StorageService between SERVING and NOT_SERVING.
type HealthServer struct {
	addr     string
	probe    Probe
	interval time.Duration
	logger   *zap.Logger

	grpcServer *grpc.Server
	health     *health.Server

	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	stopped  bool
}

// NewHealthServer creates a health server for addr.
//
// Precondition: interval > 0; probe and logger must be non-nil.
// Postcondition: Returns a HealthServer ready to be started with Start.
func NewHealthServer(addr string, interval time.Duration, probe Probe, logger *zap.Logger) *HealthServer {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(StorageService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		addr:       addr,
		probe:      probe,
		interval:   interval,
		logger:     logger,
		grpcServer: grpcServer,
		health:     healthServer,
		quit:       make(chan struct{}),
	}
}

// Start listens and serves until Stop is called. It implements Service.
func (s *HealthServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("health server listening", zap.String("addr", listener.Addr().String()))
	go s.watch()

	if err := s.grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// watch probes immediately and then every interval until Stop.
func (s *HealthServer) watch() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	serving := false
	for {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		err := s.probe(ctx)
		cancel()

		if ok := err == nil; ok != serving {
			serving = ok
			status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
			if ok {
				status = grpc_health_v1.HealthCheckResponse_SERVING
				s.logger.Info("storage healthy")
			} else {
				s.logger.Warn("storage health check failed", zap.Error(err))
			}
			s.health.SetServingStatus("", status)
			s.health.SetServingStatus(StorageService, status)
		}

		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}
	}
}

// Addr returns the listening address, or "" before Start binds.
func (s *HealthServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop marks every service NOT_SERVING and shuts the server down.
// It implements Service.
func (s *HealthServer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.quit)
	s.mu.Unlock()

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
