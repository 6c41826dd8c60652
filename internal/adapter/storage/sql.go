package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/techstore/internal/core/port"
	"github.com/niksmo/techstore/pkg/retry"
)

var _ port.KVStore = (*SQLStore)(nil)

type sqldb interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

const (
	upsertQuery = `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;`

	deleteQuery = `DELETE FROM kv WHERE key = $1;`

	selectQuery = `SELECT value FROM kv WHERE key = $1;`
)

// A SQLStore keeps the client state in the kv table of a PostgreSQL
// database. The table is created by cmd/migrator.
type SQLStore struct {
	sqldb sqldb
}

func NewSQLStore(ctx context.Context, dsn string) (SQLStore, error) {
	const op = "NewSQLStore"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLStore{}, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLStore{}, fmt.Errorf("%s: %w", op, err)
	}

	s := SQLStore{db}
	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return SQLStore{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s SQLStore) ping(ctx context.Context) error {
	const op = "SQLStore.ping"

	retryCfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}
	err := retry.Do(ctx, retryCfg, func() error {
		return s.sqldb.PingContext(ctx)
	})
	if err != nil {
		return fmt.Errorf("%s: database unavailable: %w", op, err)
	}
	slog.Info("database is available", "op", op)
	return nil
}

func (s SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "SQLStore.Get"

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var v []byte
	err := s.sqldb.QueryRowContext(ctx, selectQuery, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (s SQLStore) Put(ctx context.Context, key string, value []byte) error {
	const op = "SQLStore.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.sqldb.ExecContext(ctx, upsertQuery, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s SQLStore) Delete(ctx context.Context, key string) error {
	const op = "SQLStore.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.sqldb.ExecContext(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Apply runs all mutations in one transaction.
func (s SQLStore) Apply(
	ctx context.Context, ms ...port.Mutation,
) (applyErr error) {
	const op = "SQLStore.Apply"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if applyErr == nil {
			if err := tx.Commit(); err != nil {
				applyErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	for _, m := range ms {
		if m.Delete {
			_, err = tx.ExecContext(ctx, deleteQuery, m.Key)
		} else {
			_, err = tx.ExecContext(ctx, upsertQuery, m.Key, m.Value)
		}
		if err != nil {
			return fmt.Errorf("%s: failed to exec for %q: %w", op, m.Key, err)
		}
	}

	return nil
}

func (s SQLStore) Close() {
	const op = "SQLStore.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
