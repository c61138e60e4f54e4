package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nfidao/nfi-smart-contract/config"
	"github.com/nfidao/nfi-smart-contract/core"
	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
	"github.com/nfidao/nfi-smart-contract/gateway/routes"
	"github.com/nfidao/nfi-smart-contract/observability/logging"
	telemetry "github.com/nfidao/nfi-smart-contract/observability/otel"
	"github.com/nfidao/nfi-smart-contract/services/archive"
	"github.com/nfidao/nfi-smart-contract/storage"
)

const serviceName = "nfid"

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to the daemon configuration")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "nfid: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := logging.SetupWithFile(serviceName, cfg.Environment, cfg.LogLevel(), logging.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialise telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}

	funding, err := cfg.GenesisBalances()
	if err != nil {
		db.Close()
		return err
	}
	opts := core.Options{Pauses: cfg.Pauses, Logger: logger}
	for _, f := range funding {
		opts.Genesis = append(opts.Genesis, core.Allocation{Address: f.Address, Amount: f.Amount})
	}
	var eventArchive *archive.Archive
	if cfg.Archive.Driver != "" {
		eventArchive, err = archive.Open(cfg.Archive.Driver, cfg.Archive.DSN)
		if err != nil {
			db.Close()
			return err
		}
		defer eventArchive.Close()
		if err := eventArchive.Verify(context.Background()); err != nil {
			logger.Error("event archive failed verification", slog.Any("error", err))
		}
		opts.Archive = eventArchive
	}

	node, err := core.NewNode(db, opts)
	if err != nil {
		db.Close()
		return fmt.Errorf("start node: %w", err)
	}
	defer node.Close()

	routeCfg := routes.Config{
		Node: node,
		Authenticator: middleware.NewAuthenticator(middleware.AuthConfig{
			HMACSecret: cfg.Auth.Secret(),
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
		}, logger),
		RateLimiter: middleware.NewRateLimiter(map[string]middleware.RateLimit{
			routes.LimitMint:  {RatePerSecond: cfg.RateLimits.Mint.RatePerSecond, Burst: cfg.RateLimits.Mint.Burst},
			routes.LimitAdmin: {RatePerSecond: cfg.RateLimits.Admin.RatePerSecond, Burst: cfg.RateLimits.Admin.Burst},
			routes.LimitRead:  {RatePerSecond: cfg.RateLimits.Read.RatePerSecond, Burst: cfg.RateLimits.Read.Burst},
		}, logger),
		Observability: middleware.NewObservability(middleware.ObservabilityConfig{
			ServiceName: serviceName,
			LogRequests: cfg.Log.Level == "debug",
		}, logger),
		CORS: middleware.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		SubscriptionBuffer: cfg.Events.SubscriptionBuffer,
	}
	if eventArchive != nil {
		routeCfg.Archive = eventArchive
	}

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           routes.New(routeCfg),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("address", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("stopped")
	return nil
}
