package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/liveroom/config"
	"github.com/cwrk-planet/liveroom/internal/coordinator"
	"github.com/cwrk-planet/liveroom/internal/identity"
	"github.com/cwrk-planet/liveroom/internal/postgres"
	"github.com/cwrk-planet/liveroom/internal/service"
	grpcx "github.com/cwrk-planet/liveroom/internal/transport/grpc"
	httpx "github.com/cwrk-planet/liveroom/internal/transport/http"
	"github.com/cwrk-planet/liveroom/internal/transport/ws"
	"github.com/cwrk-planet/liveroom/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting liveroom",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- postgres ---
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// --- repos & services ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	partRepo := postgres.NewParticipantRepository(db.Pool)

	roomSvc := service.NewRoomService(roomRepo, cfg.Rooms.DefaultMaxParticipants, cfg.Rooms.MaxMaxParticipants)
	memberSvc := service.NewMemberService(roomRepo, partRepo)

	// --- identity ---
	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	// --- coordinator & WS ---
	coord := coordinator.New(coordinator.WithLogger(lg.With("component", "coordinator")))
	wsServer := ws.NewServer(coord, verifier, ws.Options{
		PingEvery:      cfg.WS.PingEvery(),
		WriteWait:      cfg.WS.WriteWait(),
		ReadLimit:      cfg.WS.ReadLimit,
		SendBuffer:     cfg.WS.SendBuffer,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, memberSvc, coord)
	router := httpx.NewRouter(handler, verifier, wsServer.HandleWS, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// --- gRPC ---
	grpcSrv := grpcx.NewServer(10 * time.Second)

	// --- run both servers ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		return grpcSrv.Serve(lis)
	})

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "cause", context.Cause(gctx))
		grpcSrv.Drain()

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := httpSrv.Shutdown(ctxShutdown)
		// hijacked websocket connections are not tracked by http.Server
		coord.Close()
		grpcSrv.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("stopped")
}

func newVerifier(cfg config.Auth) (identity.Verifier, error) {
	if cfg.PublicKeyPath == "" {
		slog.Warn("auth.publicKeyPath is empty, trusting X-User-ID")
		return identity.Trusted{}, nil
	}
	pub, err := identity.LoadRSAPublicKeyFromPEM(cfg.PublicKeyPath)
	if err != nil {
		return nil, err
	}
	return identity.NewJWTVerifier(pub, cfg.Issuer, cfg.Audience, cfg.Skew()), nil
}
