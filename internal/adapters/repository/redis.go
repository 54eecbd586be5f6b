package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

// RedisStore keeps records as JSON strings in one Redis list, newest at the
// head. The list is trimmed to the record cap on every append.
type RedisStore struct {
	client *redis.Client
	opts   options
}

var _ history.Store = (*RedisStore)(nil)

// NewRedisClient creates a client for addr with the pool settings used by the service.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts ...Option) *RedisStore {
	o := defaultOptions("history.redis")
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

// Append pushes rec to the head of the list and trims the tail.
func (s *RedisStore) Append(ctx context.Context, rec model.SimulationRecord) error {
	start := time.Now()
	defer func() { metrics.RecordHistoryWriteLatency(float64(time.Since(start).Milliseconds())) }()

	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.opts.key, payload)
	pipe.LTrim(ctx, s.opts.key, 0, int64(s.opts.maxRecords-1))
	length := pipe.LLen(ctx, s.opts.key)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordHistoryError("append")
		return fmt.Errorf("redis append %s: %w", rec.ID, err)
	}
	metrics.UpdateHistoryRecords(int(length.Val()))
	return nil
}

// List returns every decodable record, newest first.
func (s *RedisStore) List(ctx context.Context) ([]model.SimulationRecord, error) {
	records, _, err := s.scan(ctx)
	return records, err
}

// scan reads the whole list and returns the decoded records alongside the raw
// entry each one came from.
func (s *RedisStore) scan(ctx context.Context) ([]model.SimulationRecord, []string, error) {
	start := time.Now()
	defer func() { metrics.RecordHistoryReadLatency(float64(time.Since(start).Milliseconds())) }()

	raw, err := s.client.LRange(ctx, s.opts.key, 0, -1).Result()
	if err != nil {
		metrics.RecordHistoryError("list")
		return nil, nil, fmt.Errorf("redis list: %w", err)
	}

	records := make([]model.SimulationRecord, 0, len(raw))
	kept := make([]string, 0, len(raw))
	for i, entry := range raw {
		rec, err := decodeRecord([]byte(entry))
		if err != nil {
			s.opts.log.Warn(ctx, "skipping malformed history entry", logger.Int("index", i), logger.Error(err))
			metrics.RecordHistorySkipped("redis")
			continue
		}
		records = append(records, rec)
		kept = append(kept, entry)
	}
	return records, kept, nil
}

// Get returns one record by id.
func (s *RedisStore) Get(ctx context.Context, id string) (model.SimulationRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return model.SimulationRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.SimulationRecord{}, history.ErrNotFound
}

// Delete removes the entry holding id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	records, raw, err := s.scan(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID != id {
			continue
		}
		n, err := s.client.LRem(ctx, s.opts.key, 1, raw[i]).Result()
		if err != nil {
			metrics.RecordHistoryError("delete")
			return fmt.Errorf("redis delete %s: %w", id, err)
		}
		if n == 0 {
			// removed concurrently
			return history.ErrNotFound
		}
		metrics.UpdateHistoryRecords(len(records) - 1)
		return nil
	}
	return history.ErrNotFound
}

// Clear drops the list.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.opts.key).Err(); err != nil {
		metrics.RecordHistoryError("clear")
		return fmt.Errorf("redis clear: %w", err)
	}
	metrics.UpdateHistoryRecords(0)
	return nil
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping failed: %w", ErrConnect, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
