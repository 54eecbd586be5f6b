package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
	"github.com/E1207/bank-transaction-ml/pkg/metrics"
)

const uniqueViolation = "23505"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS simulation_records (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT UNIQUE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`
	insertSQL = `INSERT INTO simulation_records (id, created_at, payload) VALUES ($1, $2, $3)`
	trimSQL   = `DELETE FROM simulation_records WHERE seq NOT IN (SELECT seq FROM simulation_records ORDER BY seq DESC LIMIT $1)`
	listSQL   = `SELECT payload FROM simulation_records ORDER BY seq DESC`
	getSQL    = `SELECT payload FROM simulation_records WHERE id = $1`
	deleteSQL = `DELETE FROM simulation_records WHERE id = $1`
	clearSQL  = `DELETE FROM simulation_records`
)

// PostgresStore keeps records as JSONB rows ordered by insertion sequence.
type PostgresStore struct {
	db   *sql.DB
	opts options
}

var _ history.Store = (*PostgresStore)(nil)

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: postgres ping failed: %w", ErrConnect, err)
	}
	return db, nil
}

// NewPostgresStore wraps db. Call Migrate before first use.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	o := defaultOptions("history.postgres")
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore{db: db, opts: o}
}

// Migrate creates the records table when absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("migrate simulation_records: %w", err)
	}
	return nil
}

// Append inserts rec and deletes rows beyond the cap in one transaction.
func (s *PostgresStore) Append(ctx context.Context, rec model.SimulationRecord) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordHistoryWriteLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordHistoryError("append")
		}
	}()

	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertSQL, rec.ID, rec.CreatedAt, payload); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	res, err := tx.ExecContext(ctx, trimSQL, s.opts.maxRecords)
	if err != nil {
		return fmt.Errorf("trim records: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.opts.log.Debug(ctx, "evicted oldest records", logger.Int("count", int(n)))
	}
	return nil
}

// List returns every decodable row, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]model.SimulationRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordHistoryReadLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.db.QueryContext(ctx, listSQL)
	if err != nil {
		metrics.RecordHistoryError("list")
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.SimulationRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			s.opts.log.Warn(ctx, "skipping malformed history row", logger.Error(err))
			metrics.RecordHistorySkipped("postgres")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	metrics.UpdateHistoryRecords(len(records))
	return records, nil
}

// Get returns one record by id. A malformed row reads as missing.
func (s *PostgresStore) Get(ctx context.Context, id string) (model.SimulationRecord, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, getSQL, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SimulationRecord{}, history.ErrNotFound
	}
	if err != nil {
		metrics.RecordHistoryError("get")
		return model.SimulationRecord{}, fmt.Errorf("get record %s: %w", id, err)
	}
	rec, err := decodeRecord(payload)
	if err != nil {
		s.opts.log.Warn(ctx, "malformed history row", logger.String("id", id), logger.Error(err))
		metrics.RecordHistorySkipped("postgres")
		return model.SimulationRecord{}, history.ErrNotFound
	}
	return rec, nil
}

// Delete removes one row by id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteSQL, id)
	if err != nil {
		metrics.RecordHistoryError("delete")
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n == 0 {
		return history.ErrNotFound
	}
	return nil
}

// Clear removes every row.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, clearSQL); err != nil {
		metrics.RecordHistoryError("clear")
		return fmt.Errorf("clear records: %w", err)
	}
	metrics.UpdateHistoryRecords(0)
	return nil
}

// Ping tests the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: postgres ping failed: %w", ErrConnect, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
