package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vega/internal/adapters/ai"
	"vega/internal/adapters/config"
	"vega/internal/adapters/errors/noop"
	"vega/internal/adapters/errors/sentry"
	"vega/internal/adapters/providers"
	"vega/internal/domain/option"
	"vega/internal/domain/risk"
	"vega/internal/domain/selection"
	"vega/internal/domain/suggestion"
	"vega/internal/domain/symbol"
	"vega/internal/metrics"
	"vega/internal/services/scan"
	"vega/internal/workers"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	service := initScanService(cfg, log)

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewScanWorker(service, cfg.Workers.ScanInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	metricsServer := startMetricsServer(cfg, log)

	log.Info("System initialized successfully")

	waitForShutdown(cancel, scheduler, metricsServer, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initScanService wires providers, the suggestion builder and the optional
// advisor into a scan service
func initScanService(cfg *config.Config, log *logger.Logger) *scan.Service {
	quotes := initQuoteProvider(cfg, log)

	var bars providers.BarProvider
	var chains providers.ChainProvider
	if cfg.Providers.PrimaryURL != "" {
		primary := newHTTPProvider(cfg, "primary", cfg.Providers.PrimaryURL, cfg.Providers.PrimaryKey)
		bars = primary
		chains = primary
	} else {
		log.Warn("No primary provider configured, bars and chains disabled")
	}

	builder := suggestion.NewBuilder(symbol.DefaultTable())

	var advisor *ai.Advisor
	if cfg.Advisor.Enabled {
		advisor = ai.NewAdvisor(ai.NewChatClient(ai.ChatClientConfig{
			BaseURL: cfg.Advisor.BaseURL,
			APIKey:  cfg.Advisor.APIKey,
			Model:   cfg.Advisor.Model,
			Timeout: cfg.Advisor.Timeout,
		}))
		log.Infof("Advisor enabled with model %s", cfg.Advisor.Model)
	}

	side := option.Call
	if strings.EqualFold(cfg.Scan.Side, "put") {
		side = option.Put
	}

	return scan.NewService(scan.Config{
		Symbols:         cfg.Scan.Symbols,
		Side:            side,
		Cadence:         symbol.Cadence(cfg.Scan.Cadence),
		MinBusinessDays: cfg.Scan.MinBusinessDays,
		OTMPct:          cfg.Scan.OTMPct,
		RiskFreeRate:    cfg.Scan.RiskFreeRate,
		BarHistory:      cfg.Scan.BarHistory,
		AccountSize:     cfg.Risk.AccountSize,
		RiskPct:         cfg.Risk.RiskPct,
		Strategy:        risk.Strategy(cfg.Risk.Strategy),
		MaxContracts:    cfg.Risk.MaxContracts,
		StopLossPct:     cfg.Risk.StopLossPct,
		TakeProfitMult:  cfg.Risk.TakeProfitMult,
		Selection: selection.Criteria{
			TargetDelta:     cfg.Selection.TargetDelta,
			MaxSpreadPct:    cfg.Selection.MaxSpreadPct,
			MinOpenInterest: cfg.Selection.MinOpenInterest,
		},
		SymbolsPerSecond: cfg.Scan.SymbolsPerSecond,
	}, quotes, bars, chains, builder, advisor)
}

// initQuoteProvider builds the quote path: primary and backup HTTP gateways
// behind a fallback chain, behind a TTL cache. Without any configured
// gateway it degrades to a static dev provider.
func initQuoteProvider(cfg *config.Config, log *logger.Logger) providers.QuoteProvider {
	var chain []providers.QuoteProvider
	if cfg.Providers.PrimaryURL != "" {
		chain = append(chain, newHTTPProvider(cfg, "primary", cfg.Providers.PrimaryURL, cfg.Providers.PrimaryKey))
	}
	if cfg.Providers.BackupURL != "" {
		chain = append(chain, newHTTPProvider(cfg, "backup", cfg.Providers.BackupURL, cfg.Providers.BackupKey))
	}

	if len(chain) == 0 {
		log.Warn("No quote providers configured, using static dev quotes")
		static := providers.NewStaticProvider("dev")
		for _, sym := range cfg.Scan.Symbols {
			static.SetQuote(sym, 100)
		}
		return providers.NewQuoteCache(static, cfg.Providers.QuoteTTL)
	}

	return providers.NewQuoteCache(providers.NewFirstSuccessful(chain...), cfg.Providers.QuoteTTL)
}

func newHTTPProvider(cfg *config.Config, name, url, key string) *providers.HTTPProvider {
	return providers.NewHTTPProvider(providers.HTTPProviderConfig{
		Name:              name,
		BaseURL:           url,
		APIKey:            key,
		Timeout:           cfg.Providers.Timeout,
		RequestsPerMinute: cfg.Providers.RequestsPerMinute,
	})
}

// startMetricsServer exposes Prometheus metrics when enabled
func startMetricsServer(cfg *config.Config, log *logger.Logger) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	go func() {
		log.Infof("Metrics server listening on %s", cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server error: %v", err)
		}
	}()
	return server
}

// waitForShutdown blocks until SIGINT/SIGTERM, then shuts everything down
func waitForShutdown(
	cancel context.CancelFunc,
	scheduler *workers.Scheduler,
	metricsServer *http.Server,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Scheduler shutdown: %v", err)
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	if err := errorTracker.Flush(flushCtx); err != nil {
		log.Warnf("Error tracker flush: %v", err)
	}
	log.Info("Shutdown complete")
}
