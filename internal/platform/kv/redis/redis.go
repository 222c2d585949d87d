// Package redis stores kv partitions as plain Redis string keys and uses
// WATCH/MULTI for optimistic transactions.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loot/internal/platform/kv"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "loot"

// Store keeps keys at "<prefix>:<partition>:<key>". Every key read inside a
// transaction is WATCHed before the read, so a concurrent write to it between
// the read and EXEC aborts the transaction with kv.ErrConflict.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// Option configures the Redis store.
type Option func(*Store)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTxTimeout overrides the default transaction deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs a Redis-backed kv store.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, timeout: kv.DefaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx kv.Tx) error) error {
	return kv.Exec(ctx, s.timeout, func(ctx context.Context) error {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{store: s, rtx: rtx, staged: kv.NewStaged()}
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if tx.staged.Len() == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return tx.staged.Each(func(partition, key string, value []byte) error {
					pipe.Set(ctx, s.key(partition, key), value, 0)
					return nil
				})
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: watched key changed", kv.ErrConflict)
		}
		return err
	})
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r kv.Reader) error) error {
	return fn(ctx, &redisReader{store: s})
}

func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client owner closes the connection pool.
func (s *Store) Close() error { return nil }

func (s *Store) key(partition, key string) string {
	return kv.Key(s.prefix, partition, key)
}

type redisTx struct {
	store  *Store
	rtx    *redis.Tx
	staged *kv.Staged
}

func (t *redisTx) Get(ctx context.Context, partition, key string) ([]byte, error) {
	if v, ok := t.staged.Get(partition, key); ok {
		return v, nil
	}
	full := t.store.key(partition, key)
	if err := t.rtx.Watch(ctx, full).Err(); err != nil {
		return nil, fmt.Errorf("watch %s: %w", full, err)
	}
	v, err := t.rtx.Get(ctx, full).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", full, err)
	}
	return v, nil
}

func (t *redisTx) Put(_ context.Context, partition, key string, value []byte) error {
	t.staged.Put(partition, key, value)
	return nil
}

type redisReader struct {
	store *Store
}

func (r *redisReader) Get(ctx context.Context, partition, key string) ([]byte, error) {
	full := r.store.key(partition, key)
	v, err := r.store.client.Get(ctx, full).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", full, err)
	}
	return v, nil
}
