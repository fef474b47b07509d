// Package main is the entry point for the cross-chain arbitrage bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivoros/chainarb/business/arbitrage"
	"github.com/ivoros/chainarb/business/blockchain"
	"github.com/ivoros/chainarb/business/bot"
	botDI "github.com/ivoros/chainarb/business/bot/di"
	"github.com/ivoros/chainarb/business/bridge"
	"github.com/ivoros/chainarb/business/exchange"
	"github.com/ivoros/chainarb/business/execution"
	"github.com/ivoros/chainarb/business/ledger"
	"github.com/ivoros/chainarb/business/pricing"
	"github.com/ivoros/chainarb/internal/apm"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/health"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/metrics"
	"github.com/ivoros/chainarb/internal/monolith"
	"github.com/ivoros/chainarb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run headless with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("chainarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for servers and debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Arbitrage.TUIMode = tuiMode

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	// The TUI owns the terminal, so logs are discarded in that mode.
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting cross-chain arbitrage bot",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Modules in dependency order. The bot module ties the pipeline
	// together and must start last.
	modules := []monolith.Module{
		&blockchain.Module{},
		&pricing.Module{},
		&exchange.Module{},
		&bridge.Module{},
		&arbitrage.Module{},
		&execution.Module{},
		&ledger.Module{},
		&bot.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	controller := botDI.GetController(mono.Services())

	healthServer.RegisterCheck("scanner", func(context.Context) (bool, string) {
		st := controller.Status()
		if st.LastScanAt.IsZero() {
			return true, "no scan yet"
		}
		if time.Since(st.LastScanAt) > 5*cfg.Arbitrage.ScanInterval {
			return false, "scans stalled"
		}
		return true, ""
	})
	healthServer.RegisterCheck("engine", func(context.Context) (bool, string) {
		if controller.Status().Busy {
			return true, "trade in flight"
		}
		return true, "idle"
	})

	if tuiMode {
		return ui.Run(controller)
	}

	log.Info(ctx, "all modules started",
		"auto_execute", cfg.Arbitrage.AutoExecute,
		"scan_interval", cfg.Arbitrage.ScanInterval.String(),
	)

	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}
