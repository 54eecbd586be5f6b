package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// MemoryStore keeps records in process memory, newest first.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.SimulationRecord
	opts    options
}

var _ history.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions("history.memory")
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o}
}

// Append stores rec as the newest record.
func (s *MemoryStore) Append(ctx context.Context, rec model.SimulationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordHistoryWriteLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Insert(s.records, 0, rec)
	if len(s.records) > s.opts.maxRecords {
		evicted := s.records[s.opts.maxRecords:]
		s.opts.log.Debug(ctx, "evicting oldest records", logger.Int("count", len(evicted)))
		clear(evicted)
		s.records = s.records[:s.opts.maxRecords]
	}
	metrics.UpdateHistoryRecords(len(s.records))
	return nil
}

// List returns a copy of all records, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]model.SimulationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

// Get returns one record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.SimulationRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.SimulationRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.SimulationRecord{}, history.ErrNotFound
}

// Delete removes one record by id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.records, func(r model.SimulationRecord) bool { return r.ID == id })
	if i < 0 {
		return history.ErrNotFound
	}
	s.records = slices.Delete(s.records, i, i+1)
	metrics.UpdateHistoryRecords(len(s.records))
	return nil
}

// Clear removes every record.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	metrics.UpdateHistoryRecords(0)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
