package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poolquote/pkg"
	"poolquote/pkg/config"
	"poolquote/pkg/jupiter"
	"poolquote/pkg/logging"
	"poolquote/pkg/protocol"
	"poolquote/pkg/router"
	"poolquote/pkg/sol"
)

var (
	rpcEndpoints = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads RPC_ENDPOINTS if not specified)")
	addr         = flag.String("addr", "", "HTTP listen address (default: HTTP_ADDR or :8080)")
	rateLimit    = flag.Int("ratelimit", 0, "RPC requests per second per endpoint (default: RPC_RATE_LIMIT)")
	concurrency  = flag.Int("concurrency", router.DefaultMaxConcurrency, "Maximum quotes in flight per batch")
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}
	flag.Parse()

	cfg := config.FromEnv()
	if *rpcEndpoints != "" {
		cfg.RPCEndpoints = config.SplitEndpoints(*rpcEndpoints)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *rateLimit > 0 {
		cfg.RPCRateLimit = *rateLimit
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := sol.Dial(ctx, cfg.RPCEndpoints, cfg.RPCRateLimit)
	if err != nil {
		logger.WithError(err).Fatal("failed to create RPC client")
	}

	vendor := protocol.NewJupiterVendor(jupiter.NewClient(cfg.JupiterAPIURL, cfg.JupiterAPIKey))
	registry, err := protocol.NewDefaultRegistry(vendor, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build protocol registry")
	}

	names := make([]pkg.ProtocolName, 0, len(registry.Protocols()))
	for _, p := range registry.Protocols() {
		names = append(names, p.ProtocolName())
	}

	h := &Handlers{
		Quoter:    registry,
		Batch:     router.NewBatchQuoter(registry, *concurrency, logger),
		Conn:      conn,
		Protocols: names,
		Timeout:   cfg.QuoteTimeout,
		Logger:    logger,
		Started:   time.Now(),
	}
	e := newServer(h)

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).
			WithField("endpoints", len(cfg.RPCEndpoints)).
			Info("quote service listening")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
}
