// Package kv defines the partitioned key-value abstraction the bag stores are
// built on, along with the transaction contract every backend must honour:
// writes staged inside RunInTx become visible only when the callback returns
// nil, and a failed callback leaves every partition untouched.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loot/internal/sentinel"
	dErrors "loot/pkg/domain-errors"
)

// Sentinel errors returned by every backend, optionally wrapped.
// ErrNotFound matches sentinel.ErrNotFound under errors.Is.
var (
	ErrNotFound = fmt.Errorf("kv: key %w", sentinel.ErrNotFound)
	ErrConflict = errors.New("kv: concurrent modification")
)

// Reader reads single keys from a partition.
type Reader interface {
	Get(ctx context.Context, partition, key string) ([]byte, error)
}

// Tx is the read-write view handed to RunInTx callbacks.
type Tx interface {
	Reader
	Put(ctx context.Context, partition, key string, value []byte) error
}

// Store is an ordered key-value service with all-or-nothing transactions.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error
	Health(ctx context.Context) error
	Close() error
}

const (
	// DefaultTxTimeout bounds a transaction when the caller's context has no deadline.
	DefaultTxTimeout = 5 * time.Second

	// maxConflictRetries is how many times a transaction is re-run after losing an
	// optimistic race. The callback re-reads state on every attempt.
	maxConflictRetries = 3
)

// Exec runs attempt under the shared transaction deadline and retries it while
// the backend reports ErrConflict.
func Exec(ctx context.Context, timeout time.Duration, attempt func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var err error
	for range maxConflictRetries + 1 {
		err = attempt(ctx)
		if !errors.Is(err, ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
	}
	return err
}

// Key joins a partition and key into the flat form used by backends without
// native partitions.
func Key(prefix, partition, key string) string {
	return prefix + ":" + partition + ":" + key
}
