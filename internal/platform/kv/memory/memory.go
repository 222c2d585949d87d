// Package memory is the in-process kv backend used for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"loot/internal/platform/kv"
)

// Store keeps partitions in maps. Transactions are serialised by a single
// lock, so a read-check-then-write inside RunInTx cannot interleave with
// another transaction.
type Store struct {
	mu         sync.RWMutex
	partitions map[string]map[string][]byte
	timeout    time.Duration
}

// Option configures the in-memory store.
type Option func(*Store)

// WithTxTimeout overrides the default transaction deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		partitions: make(map[string]map[string][]byte),
		timeout:    kv.DefaultTxTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx kv.Tx) error) error {
	return kv.Exec(ctx, s.timeout, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tx := &memTx{store: s, staged: kv.NewStaged()}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return tx.staged.Each(func(partition, key string, value []byte) error {
			p, ok := s.partitions[partition]
			if !ok {
				p = make(map[string][]byte)
				s.partitions[partition] = p
			}
			p[key] = value
			return nil
		})
	})
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r kv.Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &memTx{store: s})
}

func (s *Store) Health(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Len returns the number of keys in a partition.
func (s *Store) Len(partition string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partitions[partition])
}

// memTx reads through staged writes to the committed maps. The caller holds s.mu.
type memTx struct {
	store  *Store
	staged *kv.Staged
}

func (t *memTx) Get(_ context.Context, partition, key string) ([]byte, error) {
	if t.staged != nil {
		if v, ok := t.staged.Get(partition, key); ok {
			return v, nil
		}
	}
	v, ok := t.store.partitions[partition][key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (t *memTx) Put(_ context.Context, partition, key string, value []byte) error {
	t.staged.Put(partition, key, value)
	return nil
}
