package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quillbank/ledgerd/internal/config"
	"github.com/quillbank/ledgerd/internal/handler"
	"github.com/quillbank/ledgerd/internal/infra/cache"
	"github.com/quillbank/ledgerd/internal/infra/client"
	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/infra/resilience"
	"github.com/quillbank/ledgerd/internal/ledger"
	"github.com/quillbank/ledgerd/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Float64("savings_interest_rate", cfg.SavingsInterestRate),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "ledgerd")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	adviceCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("advisor")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	advisorClient := client.NewAdvisorClient(httpClient, cfg.AdvisorAPIURL, cb, resilienceCfg)

	// --- Core ---
	book := ledger.New(cfg.SavingsInterestRate)

	// --- Services ---
	ledgerSvc := service.NewLedgerService(book, metrics, logger)
	advisorSvc := service.NewAdvisor(book, advisorClient, adviceCache, metrics, logger, cfg.RecentTxLimit)

	// --- Router ---
	router := handler.NewRouter(ledgerSvc, advisorSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
