package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/thread-service/config"
	"github.com/cwrk-planet/thread-service/internal/audit"
	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/events"
	"github.com/cwrk-planet/thread-service/internal/fanout"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/logger"
	"github.com/cwrk-planet/thread-service/internal/metrics"
	"github.com/cwrk-planet/thread-service/internal/postgres"
	"github.com/cwrk-planet/thread-service/internal/repository"
	"github.com/cwrk-planet/thread-service/internal/repository/memory"
	"github.com/cwrk-planet/thread-service/internal/service"
	grpcx "github.com/cwrk-planet/thread-service/internal/transport/grpc"
	httpx "github.com/cwrk-planet/thread-service/internal/transport/http"
	"github.com/cwrk-planet/thread-service/internal/transport/ws"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен
	_ = godotenv.Load()

	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	lg.Info("starting thread-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	m := metrics.New()
	features := config.NewFeatureStore(cfg.Features.Snapshot())
	registry := domain.NewRegistry()

	// --- storage ---
	var store repository.Store
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		mem := memory.New()
		mem.OnRetry(m.ObserveRetry)
		mem.Register(registry)
		store = mem
	default:
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		pg := postgres.NewStore(pool)
		pg.OnRetry(m.ObserveRetry)
		postgres.NewProviderRepository(pool).Register(registry)
		store = pg
	}
	defer store.Close()

	// --- event bus ---
	bus := events.NewBus(lg, cfg.Events.Buffer, cfg.Events.SinkTimeoutOr(2*time.Second))
	bus.Subscribe(events.NewLogSink(lg), m.Sink())

	var auditLog httpx.AuditReader
	if cfg.Audit.Enabled {
		al, err := audit.Open(cfg.Audit.Dir, lg)
		if err != nil {
			log.Fatalf("audit: %v", err)
		}
		defer func() { _ = al.Close() }()
		bus.Subscribe(al)
		auditLog = al
	}

	busDone := make(chan struct{})
	go func() {
		_ = bus.Run(ctx)
		close(busDone)
	}()

	// --- fan-out ---
	hub := ws.NewHub(lg)
	presence := service.NewPresenceLookup(store)
	dispatcher := fanout.NewDispatcher(lg, m.Broadcaster(hub), bus, presence)

	// --- services ---
	policy := service.NewParticipantPolicy(store)
	reactionSvc := service.NewReactionService(store, features, policy, dispatcher)
	callSvc := service.NewCallService(lg, store, features, policy, dispatcher)
	statusSvc := service.NewStatusService(store, registry, features, dispatcher)
	statusSvc.SetOnlineWindow(cfg.Presence.OnlineWindowOr(60 * time.Second))
	statusSvc.SetBroadcastStatus(cfg.Presence.BroadcastStatus)

	resolver := identity.NewResolver(registry)

	// --- WS ---
	wsServer := ws.NewServer(lg, hub, presence, statusSvc, resolver)
	wsServer.SetPingInterval(cfg.WebSocket.PingIntervalOr(15 * time.Second))
	wsServer.SetQueueSize(cfg.WebSocket.SendQueue)
	wsServer.SetConnGauge(m.WSConnections)

	// --- HTTP ---
	router := httpx.NewRouter(httpx.Deps{
		Handler:     httpx.NewHandler(reactionSvc, callSvc, statusSvc, auditLog, service.NewAuditAccess(resolver, cfg.Audit.ReaderRefs())),
		Actors:      resolver,
		Features:    features,
		Toucher:     statusSvc,
		WS:          wsServer.HandleWS,
		Metrics:     m,
		Health:      store.Ping,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: cfg.HTTP.ReadTimeoutOr(10 * time.Second),
		IdleTimeout: 60 * time.Second,
	}

	// --- gRPC ---
	grpcSrv := grpcx.NewServer(lg)
	go grpcSrv.Watch(ctx, store, 5*time.Second)

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcSrv.GRPC().Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// --- signals: SIGHUP перечитывает фичи, SIGINT/SIGTERM останавливают ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

loop:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				f, err := features.Reload(config.Path())
				if err != nil {
					slog.Error("features reload failed", "err", err)
					continue
				}
				slog.Info("features reloaded",
					"reactions", f.Reactions, "calling", f.Calling,
					"broadcasting", f.Broadcasting, "events", f.Events)
				continue
			}
			slog.Info("shutdown signal", "sig", sig)
			break loop
		case err := <-errCh:
			slog.Error("server error", "err", err)
			break loop
		}
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeoutOr(10*time.Second))
	defer cancel()

	grpcSrv.Stop()
	_ = httpSrv.Shutdown(ctxShutdown)

	// шина дочитывает буфер после остановки приёма запросов
	stop()
	select {
	case <-busDone:
	case <-ctxShutdown.Done():
		slog.Warn("event bus drain timed out")
	}
	slog.Info("stopped")
}
