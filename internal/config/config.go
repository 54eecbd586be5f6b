// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/E1207/bank-transaction-ml/internal/adapters/repository"
	"github.com/E1207/bank-transaction-ml/internal/domain/decision"
	"github.com/E1207/bank-transaction-ml/internal/domain/finance"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// WriteTimeout bounds writing an HTTP response. Zero derives it from the
	// predictor call budget.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// Threshold is the acceptance score, 0..100.
	Threshold float64 `koanf:"threshold"`
	// HouseholdBaseline is the disposable-income requirement per household member.
	HouseholdBaseline float64 `koanf:"household_baseline"`
	// DisposableFloor scales the household threshold below which the
	// disposable income penalty applies.
	DisposableFloor float64 `koanf:"disposable_floor"`
	// CatalogPath points at a YAML question catalog; empty uses the built-in one.
	CatalogPath string `koanf:"catalog_path"`

	// QueueSize bounds the asynchronous submission queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	Predictor PredictorConfig `koanf:"predictor"`
	History   HistoryConfig   `koanf:"history"`
}

// PredictorConfig locates the predictive service.
type PredictorConfig struct {
	// BaseURL of the service; empty selects the in-process simulation.
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxRetries      int           `koanf:"max_retries"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	WarmupTimeout   time.Duration `koanf:"warmup_timeout"`

	// SimulatedLatencyMinMS and SimulatedLatencyMaxMS bound the simulation latency.
	SimulatedLatencyMinMS int `koanf:"simulated_latency_min_ms"`
	SimulatedLatencyMaxMS int `koanf:"simulated_latency_max_ms"`
}

// responseMargin leaves room for fallback scoring and persistence after the
// predictor call budget is spent.
const responseMargin = 10 * time.Second

// CallBudget is the longest one predictive call can take: every attempt
// timing out plus the largest randomized backoff wait between attempts.
func (p PredictorConfig) CallBudget() time.Duration {
	total := time.Duration(p.MaxRetries+1) * p.Timeout
	interval := float64(p.InitialInterval)
	if interval <= 0 {
		interval = float64(backoff.DefaultInitialInterval)
	}
	for range p.MaxRetries {
		wait := min(interval, float64(backoff.DefaultMaxInterval))
		total += time.Duration(wait * (1 + backoff.DefaultRandomizationFactor))
		interval *= backoff.DefaultMultiplier
	}
	return total
}

// HistoryConfig selects the record store.
type HistoryConfig struct {
	Backend       string `koanf:"backend"`
	MaxRecords    int    `koanf:"max_records"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`
	PostgresDSN   string `koanf:"postgres_dsn"`
}

// Repository converts the section into the store factory configuration.
func (h HistoryConfig) Repository() repository.Config {
	return repository.Config{
		Backend:       h.Backend,
		MaxRecords:    h.MaxRecords,
		RedisAddr:     h.RedisAddr,
		RedisPassword: h.RedisPassword,
		RedisDB:       h.RedisDB,
		RedisKey:      h.RedisKey,
		PostgresDSN:   h.PostgresDSN,
	}
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ShutdownTimeout:   10 * time.Second,
		Threshold:         decision.DefaultThreshold,
		HouseholdBaseline: finance.DefaultHouseholdBaseline,
		DisposableFloor:   1.0,
		QueueSize:         1024,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		Predictor: PredictorConfig{
			Timeout:               60 * time.Second,
			MaxRetries:            2,
			InitialInterval:       500 * time.Millisecond,
			WarmupTimeout:         5 * time.Second,
			SimulatedLatencyMinMS: 80,
			SimulatedLatencyMaxMS: 150,
		},
		History: HistoryConfig{
			Backend:    repository.BackendMemory,
			MaxRecords: history.DefaultMaxRecords,
			RedisAddr:  "localhost:6379",
			RedisKey:   "credit:simulations",
		},
	}
}

// HTTPWriteTimeout returns WriteTimeout when set, otherwise the predictor
// call budget plus a margin.
func (c *Config) HTTPWriteTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	return c.Predictor.CallBudget() + responseMargin
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Threshold < 0 || c.Threshold > 100:
		return fmt.Errorf("%w: threshold %.2f outside [0,100]", ErrInvalidConfig, c.Threshold)
	case c.HouseholdBaseline < 0:
		return fmt.Errorf("%w: household_baseline must not be negative", ErrInvalidConfig)
	case c.DisposableFloor <= 0:
		return fmt.Errorf("%w: disposable_floor must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.Predictor.Timeout <= 0:
		return fmt.Errorf("%w: predictor.timeout must be positive", ErrInvalidConfig)
	case c.Predictor.MaxRetries < 0:
		return fmt.Errorf("%w: predictor.max_retries must not be negative", ErrInvalidConfig)
	case c.WriteTimeout < 0:
		return fmt.Errorf("%w: write_timeout must not be negative", ErrInvalidConfig)
	case c.WriteTimeout > 0 && c.WriteTimeout <= c.Predictor.CallBudget():
		return fmt.Errorf("%w: write_timeout %s does not cover the predictor call budget %s",
			ErrInvalidConfig, c.WriteTimeout, c.Predictor.CallBudget())
	case c.Predictor.SimulatedLatencyMaxMS < c.Predictor.SimulatedLatencyMinMS:
		return fmt.Errorf("%w: simulated latency bounds inverted", ErrInvalidConfig)
	case c.History.MaxRecords <= 0:
		return fmt.Errorf("%w: history.max_records must be positive", ErrInvalidConfig)
	}

	switch c.History.Backend {
	case repository.BackendMemory, repository.BackendRedis:
	case repository.BackendPostgres:
		if c.History.PostgresDSN == "" {
			return fmt.Errorf("%w: history.postgres_dsn required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown history.backend %q", ErrInvalidConfig, c.History.Backend)
	}
	return nil
}
