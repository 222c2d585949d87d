// Package kvtest holds the behavioural checks every kv backend must pass.
// Backend packages call Run from their own tests with a factory that hands
// out an empty store.
package kvtest

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loot/internal/platform/kv"
	"loot/pkg/testutil"
)

// Run exercises the transaction contract against stores built by newStore.
// newStore must return a store with no keys.
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		store := newStore(t)
		err := store.View(context.Background(), func(ctx context.Context, r kv.Reader) error {
			_, err := r.Get(ctx, "claims", "404")
			return err
		})
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("commit makes writes visible", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			if err := tx.Put(ctx, "claims", "1", []byte("taken")); err != nil {
				return err
			}
			return tx.Put(ctx, "bags", "1", []byte(`{"token_id":1}`))
		}))

		require.NoError(t, store.View(ctx, func(ctx context.Context, r kv.Reader) error {
			v, err := r.Get(ctx, "claims", "1")
			require.NoError(t, err)
			assert.Equal(t, "taken", string(v))
			v, err = r.Get(ctx, "bags", "1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"token_id":1}`, string(v))
			return nil
		}))
	})

	t.Run("partitions are disjoint", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			return tx.Put(ctx, "claims", "7", []byte("taken"))
		}))
		err := store.View(ctx, func(ctx context.Context, r kv.Reader) error {
			_, err := r.Get(ctx, "bags", "7")
			return err
		})
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("failed callback leaves no trace", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		boom := errors.New("boom")

		err := store.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
			if err := tx.Put(ctx, "claims", "5", []byte("taken")); err != nil {
				return err
			}
			if err := tx.Put(ctx, "bags", "5", []byte(`{}`)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		for _, partition := range []string{"claims", "bags"} {
			err := store.View(ctx, func(ctx context.Context, r kv.Reader) error {
				_, err := r.Get(ctx, partition, "5")
				return err
			})
			assert.ErrorIs(t, err, kv.ErrNotFound, partition)
		}
	})

	t.Run("overwrite replaces the value", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, v := range []string{"false", "true"} {
			require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
				return tx.Put(ctx, "state", "paused", []byte(v))
			}))
		}
		require.NoError(t, store.View(ctx, func(ctx context.Context, r kv.Reader) error {
			v, err := r.Get(ctx, "state", "paused")
			require.NoError(t, err)
			assert.Equal(t, "true", string(v))
			return nil
		}))
	})

	t.Run("concurrent check-then-write admits one writer", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		errTaken := errors.New("taken")

		result := testutil.RunConcurrent(12, func(idx int) error {
			return store.RunInTx(ctx, func(ctx context.Context, tx kv.Tx) error {
				_, err := tx.Get(ctx, "claims", "42")
				if err == nil {
					return errTaken
				}
				if !errors.Is(err, kv.ErrNotFound) {
					return err
				}
				return tx.Put(ctx, "claims", "42", []byte(strconv.Itoa(idx)))
			})
		})

		assert.Equal(t, int32(1), result.Successes)
		assert.Equal(t, int32(11), result.Errors)
	})
}
