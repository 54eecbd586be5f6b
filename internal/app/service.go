// Package service orchestrates credit assessments: it runs the scoring
// engine against the predictive service, persists simulation records and
// serves the history and async submission flows used by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/E1207/bank-transaction-ml/internal/adapters/mq/queue"
	"github.com/E1207/bank-transaction-ml/internal/adapters/mq/worker"
	"github.com/E1207/bank-transaction-ml/internal/adapters/predictor"
	"github.com/E1207/bank-transaction-ml/internal/adapters/repository"
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/decision"
	"github.com/E1207/bank-transaction-ml/internal/domain/dedupe"
	"github.com/E1207/bank-transaction-ml/internal/domain/features"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/scoring"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// Service implements the API dependencies of the scoring service.
type Service struct {
	mu sync.RWMutex

	// Scoring pipeline
	catalog     *catalog.Catalog
	engine      *scoring.Engine
	fallback    *scoring.Fallback
	transformer *features.Transformer
	predictor   predictor.Predictor
	threshold   float64
	engineOpts  []scoring.Option

	// Persistence and async intake
	store   history.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	now   func() time.Time
	newID func() string

	started bool
	cancel  context.CancelFunc
	logger  logger.Logger
}

// New constructs a Service. Unset collaborators default to the built-in
// catalog, the simulated predictor and an in-memory store.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		threshold:   decision.DefaultThreshold,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   1024,
		dedupeSize:  50_000,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		s.catalog = catalog.Builtin()
	}
	if s.predictor == nil {
		s.predictor = predictor.NewSimulated()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	engine, err := scoring.NewEngine(s.catalog, s.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("build scoring engine: %w", err)
	}
	s.engine = engine
	s.fallback = scoring.NewFallback(engine)
	s.transformer = features.NewTransformer(s.catalog)
	return s, nil
}

// Start creates the submission queue and starts the worker pool. Workers
// run on a context detached from ctx; only Stop ends them, after the queue
// has drained.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting scoring service...")
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("threshold", s.threshold),
	)
	return nil
}

// Stop drains pending submissions, then closes the store. Work still in
// flight when ctx expires is cancelled and not persisted.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping scoring service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	s.cancel()
	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close history store: %w", err)
		}
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
	return firstErr
}

// Catalog returns the question catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Threshold returns the acceptance threshold.
func (s *Service) Threshold() float64 { return s.threshold }

// Predictor returns the predictive service client.
func (s *Service) Predictor() predictor.Predictor { return s.predictor }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"threshold":   s.threshold,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["submissionsSeen"] = s.deduper.Size()
		stats["workers"] = s.pool.Size()
		metrics.UpdateWorkerActiveCount(s.pool.Size())
	}
	return stats
}
