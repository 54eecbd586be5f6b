package repository

import (
	"context"
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backend is a history store with a connection lifecycle.
type Backend interface {
	history.Store
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Backend       string
	MaxRecords    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	PostgresDSN   string
}

// Open builds the configured backend and checks it is reachable.
func Open(ctx context.Context, cfg Config, opts ...Option) (Backend, error) {
	opts = append([]Option{WithMaxRecords(cfg.MaxRecords), WithKey(cfg.RedisKey)}, opts...)

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(opts...), nil
	case BackendRedis:
		s := NewRedisStore(NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), opts...)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s := NewPostgresStore(db, opts...)
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
