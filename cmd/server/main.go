package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hernandor/solpay/service/auth"
	"github.com/hernandor/solpay/service/config"
	"github.com/hernandor/solpay/service/db"
	"github.com/hernandor/solpay/service/events"
	"github.com/hernandor/solpay/service/metrics"
	"github.com/hernandor/solpay/service/server"
	"github.com/hernandor/solpay/service/solanapay"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	store := db.NewStore(dbPool)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Solana RPC client and verifier
	// Note: For premium RPC endpoints, include API key in the URL
	rpcClient := solanapay.NewRPCClient(cfg.SolanaRPCURL)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	m := metrics.NewMetrics(nil) // nil uses default registry

	verifier := solanapay.NewVerifier(rpcClient, cfg.SolanaRPCURL, m, logger)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// NATS is optional; events are simply not published when no URL is set.
	var publisher events.Publisher
	if cfg.NATSURL != "" {
		jsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		defer jsPublisher.Close()
		publisher = jsPublisher
	} else {
		logger.Warn("NATS_URL not set, payment events disabled")
	}

	httpServer := server.New(cfg.ServerAddr, cfg, store, verifier, issuer, publisher, m, logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
