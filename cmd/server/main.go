// Command caseledger-server serves the case ledger over HTTP and gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nagarrakshak/caseledger/internal/auth"
	"github.com/nagarrakshak/caseledger/internal/config"
	"github.com/nagarrakshak/caseledger/internal/fixtures"
	"github.com/nagarrakshak/caseledger/internal/limiter"
	"github.com/nagarrakshak/caseledger/internal/logging"
	"github.com/nagarrakshak/caseledger/internal/migrate"
	"github.com/nagarrakshak/caseledger/internal/repository/postgres"
	grpcserver "github.com/nagarrakshak/caseledger/internal/server/grpc"
	httpserver "github.com/nagarrakshak/caseledger/internal/server/http"
	"github.com/nagarrakshak/caseledger/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, prepares the record store, and runs both listeners until a signal arrives.
func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	httpAddr := flag.String("http-addr", "", "HTTP listen address (overrides config)")
	grpcAddr := flag.String("grpc-addr", "", "gRPC listen address (overrides config)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides config)")
	dev := flag.Bool("dev", false, "enable gRPC server reflection (dev only)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *grpcAddr != "" {
		cfg.GRPCAddr = *grpcAddr
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTPAddr),
		zap.String("grpc", cfg.GRPCAddr),
	)

	sentryOn := cfg.SentryDSN != ""
	if sentryOn {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: version}); err != nil {
			logger.Warn("sentry disabled", zap.Error(err))
			sentryOn = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		mctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		// An unreachable store is not fatal: reads fall back to bundled fixtures.
		if err := migrate.Up(mctx, cfg.DSN); err != nil {
			logger.Warn("migrate up", zap.Error(err))
		} else if v, err := migrate.Version(mctx, cfg.DSN); err == nil {
			logger.Info("schema migrated", zap.Int64("version", v))
		}
		cancel()
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("record store pool", zap.Error(err))
	}
	defer db.Close()

	// Services
	audit := service.NewAuditRecorder(postgres.NewAuditRepo(db), logger, cfg.StoreTimeout)
	officers := service.NewOfficerService(postgres.NewOfficerRepo(db), audit, logger, cfg.StoreTimeout)
	cases := service.NewCaseService(postgres.NewIncidentRepo(db), fixtures.NewLoader(logger), officers, audit, logger,
		service.CaseOptions{StoreTimeout: cfg.StoreTimeout, CacheTTL: cfg.CacheTTL, MinReasonLength: cfg.MinReasonLength})
	verifier := auth.NewVerifier([]byte(cfg.JWTKey))
	lim := limiter.NewPG(db.Pool, cfg.Session.Window, cfg.Session.MaxFailures, cfg.Session.BlockFor)
	sessions := service.NewSessionService(verifier, officers, lim, logger)
	stats := service.NewStatsService(cases, officers, logger)

	app := httpserver.New(httpserver.Deps{
		Cases:    cases,
		Officers: officers,
		Sessions: sessions,
		Stats:    stats,
		Audit:    audit,
		Ping:     db.Ping,
		JWTKey:   []byte(cfg.JWTKey),
		Log:      logger,
		Sentry:   sentryOn,
	})

	// gRPC server with interceptors
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(verifier),
		),
	)
	grpcserver.RegisterCaseLedgerServer(s, grpcserver.New(cases, stats))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if *dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
		errCh <- s.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	exit := 0
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("server error", zap.Error(err))
			exit = 1
		}
	}

	hs.Shutdown()
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Stop()
	}

	logger.Info("shutdown complete")
	if exit != 0 {
		_ = logger.Sync()
		os.Exit(exit)
	}
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("caseledger-server: " + err.Error() + "\n")
	os.Exit(2)
}
