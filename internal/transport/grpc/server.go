package grpcx

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName - имя сервиса в grpc.health.v1; пустая строка - общий статус сервера.
const ServiceName = "thread-service"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server - gRPC-сервер с health-сервисом, отражающим доступность хранилища.
type Server struct {
	log    *slog.Logger
	grpc   *grpc.Server
	health *health.Server
}

func NewServer(log *slog.Logger) *Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(log, 10*time.Second)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{log: log, grpc: gs, health: hs}
}

func (s *Server) GRPC() *grpc.Server { return s.grpc }

// Watch проверяет хранилище каждые interval и обновляет статус до отмены ctx.
func (s *Server) Watch(ctx context.Context, store Pinger, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s.check(ctx, store)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx, store)
		}
	}
}

func (s *Server) check(ctx context.Context, store Pinger) {
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := store.Ping(pctx); err != nil {
		s.log.Warn("store ping failed", "err", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Stop переводит health в NOT_SERVING и дожидается завершения вызовов.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
