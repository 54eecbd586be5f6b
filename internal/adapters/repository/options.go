// Package repository provides history.Store implementations: an in-memory
// ring, a Redis list and a PostgreSQL table.
package repository

import (
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

const defaultRedisKey = "credit:simulations"

type options struct {
	maxRecords int
	key        string
	log        logger.Logger
}

func defaultOptions(component string) options {
	return options{
		maxRecords: history.DefaultMaxRecords,
		key:        defaultRedisKey,
		log:        logger.Get().Named(component),
	}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithMaxRecords caps the number of kept records; the oldest are evicted.
func WithMaxRecords(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRecords = n
		}
	}
}

// WithKey sets the Redis list key.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithLogger overrides the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
