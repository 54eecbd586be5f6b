package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/adapters/http/api"
	"github.com/E1207/bank-transaction-ml/internal/adapters/http/swagger"
	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/internal/adapters/repository"
	service "github.com/E1207/bank-transaction-ml/internal/app"
	"github.com/E1207/bank-transaction-ml/internal/config"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/scoring"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "scoring service exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.InitWithOptions(logger.Options{Format: logger.Format(cfg.LogFormat), Level: cfg.LogLevel}); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	log := logger.Get()

	svc, store, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	// Opportunistic probe; scoring falls back on its own if the model is down
	// or reports an unexpected feature layout.
	predictor.Warmup(ctx, svc.Predictor(), cfg.Predictor.WarmupTimeout)

	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := newHTTPServer(cfg.Addr, cfg.HTTPWriteTimeout(), svc)
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// buildService wires the catalog, history backend and predictor into the
// scoring service. The returned backend is owned by the service.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, repository.Backend, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := repository.Open(ctx, cfg.History.Repository())
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithCatalog(cat),
		service.WithPredictor(buildPredictor(cfg.Predictor)),
		service.WithStore(store),
		service.WithThreshold(cfg.Threshold),
		service.WithEngineOptions(
			scoring.WithHouseholdBaseline(cfg.HouseholdBaseline),
			scoring.WithDisposableFloor(cfg.DisposableFloor),
		),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}

// buildPredictor returns the HTTP client when a base URL is configured and
// the in-process simulation otherwise.
func buildPredictor(cfg config.PredictorConfig) predictor.Predictor {
	if cfg.BaseURL == "" {
		return predictor.NewSimulated(predictor.WithLatencyRange(
			time.Duration(cfg.SimulatedLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.SimulatedLatencyMaxMS)*time.Millisecond,
		))
	}
	return predictor.NewClient(cfg.BaseURL,
		predictor.WithTimeout(cfg.Timeout),
		predictor.WithMaxRetries(cfg.MaxRetries),
		predictor.WithInitialInterval(cfg.InitialInterval),
	)
}

// newHTTPServer mounts the docs and the API. writeTimeout must outlast the
// predictor call budget so degraded results still reach the caller.
func newHTTPServer(addr string, writeTimeout time.Duration, svc *service.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc).Register(mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes queue and history gauges.
func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if _, err := svc.History(ctx, ""); err != nil {
		logger.Get().Debug(ctx, "history gauge refresh failed", logger.Error(err))
	}
}
