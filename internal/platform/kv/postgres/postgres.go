// Package postgres stores kv partitions in a single PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"loot/internal/platform/kv"
)

// SQLSTATE codes mapped onto kv.ErrConflict.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// Store runs every transaction at SERIALIZABLE isolation so two claims for the
// same identifier cannot both observe it as absent.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// New constructs a PostgreSQL-backed kv store. The kv_entries table is created
// by migrations/001_kv_entries.sql.
func New(db *sql.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = kv.DefaultTxTimeout
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx kv.Tx) error) error {
	return kv.Exec(ctx, s.timeout, func(ctx context.Context) error {
		return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, &pgTx{tx: tx})
		})
	})
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r kv.Reader) error) error {
	return kv.Exec(ctx, s.timeout, func(ctx context.Context) error {
		return s.run(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, &pgTx{tx: tx})
		})
	})
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", mapError(err))
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool owner closes the *sql.DB.
func (s *Store) Close() error { return nil }

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Get(ctx context.Context, partition, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE partition = $1 AND key = $2
	`
	var value []byte
	if err := t.tx.QueryRowContext(ctx, query, partition, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", partition, key, mapError(err))
	}
	return value, nil
}

func (t *pgTx) Put(ctx context.Context, partition, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (partition, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (partition, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := t.tx.ExecContext(ctx, query, partition, key, value); err != nil {
		return fmt.Errorf("put %s/%s: %w", partition, key, mapError(err))
	}
	return nil
}

// mapError turns retryable PostgreSQL failures into kv.ErrConflict.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return fmt.Errorf("%w: %s", kv.ErrConflict, pgErr.Message)
		}
	}
	return err
}
