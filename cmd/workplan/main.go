// Package main is the entry point for the workplan service: a NATS
// request/reply backend that manages clients and their workloads on a
// JetStream ObjectStore bucket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/workplan/batch"
	"github.com/c360/workplan/config"
	"github.com/c360/workplan/docstore"
	"github.com/c360/workplan/lifecycle"
	"github.com/c360/workplan/metric"
	"github.com/c360/workplan/natsclient"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/partition"
	"github.com/c360/workplan/report"
	"github.com/c360/workplan/server"
	"github.com/c360/workplan/storage/objectstore"
	"github.com/c360/workplan/summary"
	"github.com/c360/workplan/validate"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "workplan"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting workplan", "version", Version, "config_path", cliCfg.ConfigPath)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	natsClient, err := connectNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := natsClient.Close(ctx); err != nil {
			slog.Error("Error closing NATS client", "error", err)
		}
	}()

	registry := metric.NewRegistry()

	srv, err := buildServer(ctx, cfg, natsClient, registry, logger)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			slog.Error("Error stopping server", "error", err)
		}
	}()

	metricsServer := startMetrics(cfg.Metrics, registry)

	slog.Info("workplan started")
	return waitForShutdown(ctx, metricsServer, cliCfg.ShutdownTimeout)
}

func connectNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsClient, err := natsclient.NewClient(cfg.NATS.URL,
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait.Std()),
		natsclient.WithConnectTimeout(cfg.NATS.ConnectTimeout.Std()),
		natsclient.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.NATS.URL)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return natsClient, nil
}

// buildServer wires the full stack: ObjectStore backend, document store,
// lifecycle coordinator, orchestrator, reporting, and the transport server.
func buildServer(
	ctx context.Context,
	cfg *config.Config,
	natsClient *natsclient.Client,
	registry *metric.Registry,
	logger *slog.Logger,
) (*server.Server, error) {
	backend, err := objectstore.NewStore(ctx, natsClient, objectstore.Config{
		Bucket:      cfg.Store.Bucket,
		Description: cfg.Store.Description,
		Replicas:    cfg.Store.Replicas,
	},
		objectstore.WithLogger(logger),
		objectstore.WithMetrics(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}

	docs := docstore.New(backend, docstore.WithLogger(logger))

	validator := validate.New()
	if cfg.Validation.MinYear > 0 {
		validator.MinYear = cfg.Validation.MinYear
	}

	coord := lifecycle.New(lifecycle.Deps{
		Docs:       docs,
		Partitions: partition.New(docs, partition.WithLogger(logger)),
		Summaries:  summary.New(docs, summary.WithLogger(logger)),
		Notifier:   notify.NewService(notify.NewNATSSender(natsClient), notify.WithLogger(logger)),
	},
		lifecycle.WithLogger(logger),
		lifecycle.WithValidator(validator),
	)

	return server.New(natsClient,
		batch.New(coord, batch.WithLogger(logger)),
		report.New(docs, report.WithLogger(logger)),
		server.Config{
			OperationsSubject: cfg.Server.OperationsSubject,
			AnalysisSubject:   cfg.Server.AnalysisSubject,
			ReportSubject:     cfg.Server.ReportSubject,
			ClientsSubject:    cfg.Server.ClientsSubject,
			WorkloadsSubject:  cfg.Server.WorkloadsSubject,
			RequestTimeout:    cfg.Server.RequestTimeout.Std(),
		},
		server.WithLogger(logger),
	), nil
}

// startMetrics exposes the prometheus registry over HTTP when enabled.
func startMetrics(cfg config.MetricsConfig, registry *metric.Registry) *http.Server {
	if !cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Metrics server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return srv
}

func waitForShutdown(ctx context.Context, metricsServer *http.Server, timeout time.Duration) error {
	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stop metrics server: %w", err)
		}
	}

	slog.Info("workplan shutdown complete")
	return nil
}
