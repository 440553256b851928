package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLExecutor is the subset of pgxpool.Pool the store needs, kept narrow so
// tests can stub it.
type SQLExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	qEnsureTable = `CREATE TABLE IF NOT EXISTS app_counters (
	name       TEXT PRIMARY KEY,
	value      BIGINT NOT NULL DEFAULT 0,
	touched_at TIMESTAMPTZ
)`
	qIncrement = `INSERT INTO app_counters (name, value) VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET value = app_counters.value + 1
RETURNING value`
	qValue = `SELECT value FROM app_counters WHERE name = $1`
	qTouch = `INSERT INTO app_counters (name, value, touched_at) VALUES ($1, 0, $2)
ON CONFLICT (name) DO UPDATE SET touched_at = EXCLUDED.touched_at`
	qLastTouch = `SELECT touched_at FROM app_counters WHERE name = $1`
)

// PostgresStore persists counters in a single Postgres table with atomic
// upsert increments, for deployments that want durable numbers.
type PostgresStore struct {
	sql SQLExecutor
}

// NewPostgresStore ensures the counter table exists and returns the store.
func NewPostgresStore(ctx context.Context, sql SQLExecutor) (*PostgresStore, error) {
	if sql == nil {
		return nil, errors.New("counter: sql executor is required")
	}
	if _, err := sql.Exec(ctx, qEnsureTable); err != nil {
		return nil, fmt.Errorf("counter: ensure table: %w", err)
	}
	return &PostgresStore{sql: sql}, nil
}

func (s *PostgresStore) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := s.sql.QueryRow(ctx, qIncrement, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("counter: increment %s: %w", name, err)
	}
	return value, nil
}

func (s *PostgresStore) Value(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.sql.QueryRow(ctx, qValue, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter: read %s: %w", name, err)
	}
	return value, nil
}

func (s *PostgresStore) Touch(ctx context.Context, name string, t time.Time) error {
	if _, err := s.sql.Exec(ctx, qTouch, name, t); err != nil {
		return fmt.Errorf("counter: touch %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) LastTouch(ctx context.Context, name string) (time.Time, error) {
	var touched *time.Time
	err := s.sql.QueryRow(ctx, qLastTouch, name).Scan(&touched)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("counter: read timestamp %s: %w", name, err)
	}
	if touched == nil {
		return time.Time{}, nil
	}
	return *touched, nil
}
