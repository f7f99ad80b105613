// Package main is the entry point for the metabase-mcp server.
// It wires configuration, telemetry, the Metabase gateway, and the MCP tool
// surface, then serves over stdio, SSE, or streamable HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/config"
	"github.com/mwadron/metabase-mcp/internal/dashboard"
	"github.com/mwadron/metabase-mcp/internal/gateway"
	"github.com/mwadron/metabase-mcp/internal/metric"
	"github.com/mwadron/metabase-mcp/internal/observability"
	"github.com/mwadron/metabase-mcp/internal/tools"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (optional, environment variables apply on top)")
	transportFlag := flag.String("transport", "", "override the configured transport: stdio, sse, or http")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if *transportFlag != "" {
		cfg.Server.Transport = *transportFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			return 1
		}
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "metabase-mcp", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	gw := gateway.NewClient(cfg.Metabase, logger, metrics)

	mcpServer := tools.NewServer(tools.Deps{
		Gateway:     gw,
		Dashboards:  dashboard.NewEngine(gw, logger),
		Metrics:     metric.NewService(gw, logger),
		Logger:      logger,
		Instruments: metrics,
	}, version)

	logger.Info("server starting",
		zap.String("transport", cfg.Server.Transport),
		zap.String("metabase_url", cfg.Metabase.URL),
		zap.String("version", version),
		zap.String("commit", commit),
	)

	if cfg.Server.Transport == "stdio" {
		if err := server.ServeStdio(mcpServer); err != nil && ctx.Err() == nil {
			logger.Error("stdio server error", zap.Error(err))
			return 1
		}
		if err := tracingShutdown(context.Background()); err != nil {
			logger.Error("tracing shutdown error", zap.Error(err))
		}
		logger.Info("shutdown complete")
		return 0
	}

	return runHTTP(ctx, cfg, logger, metrics, gw, mcpServer, tracingShutdown)
}

// runHTTP serves the SSE or streamable HTTP transport on a chi router that
// also carries health, readiness, and metrics endpoints.
func runHTTP(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	gw *gateway.Client,
	mcpServer *server.MCPServer,
	tracingShutdown func(context.Context) error,
) int {
	r := chi.NewRouter()
	r.Use(metrics.MetricsMiddleware)
	r.Get("/healthz", observability.HandleHealth())
	r.Get("/readyz", observability.HandleReady(gw))
	if cfg.Observability.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Observability.Metrics.Path, observability.Handler())
	}

	switch cfg.Server.Transport {
	case "sse":
		sse := server.NewSSEServer(mcpServer)
		r.Handle("/sse", sse)
		r.Handle("/message", sse)
	case "http":
		r.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer))
	}

	// No write deadline: both transports hold streaming responses open.
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	logger.Info("server started",
		zap.String("addr", srv.Addr),
		zap.String("transport", cfg.Server.Transport),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}
