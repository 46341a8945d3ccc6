// Package lock serializes work on agent ledgers across goroutines and processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker acquires exclusive locks on string keys.
// Lock blocks until the lock is held or ctx is done. ttl bounds how long a
// crashed holder can keep a distributed lock; in-process lockers ignore it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// AgentKey returns the lock key for an agent ledger. Ids are zero-padded so that
// lexical key order matches numeric id order.
func AgentKey(agentID int64) string {
	return fmt.Sprintf("agent:%020d", agentID)
}

// Acquire locks every key in ascending order and returns a function that
// releases them in reverse order. Duplicate keys are locked once. If any lock
// fails, the ones already held are released before returning the error.
func Acquire(ctx context.Context, l Locker, ttl time.Duration, keys ...string) (UnlockFunc, error) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]UnlockFunc, 0, len(ordered))
	release := func(ctx context.Context) error {
		var errs []error
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, key := range ordered {
		unlock, err := l.Lock(ctx, key, ttl)
		if err != nil {
			// ctx may already be done; release with a fresh one.
			_ = release(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		held = append(held, unlock)
	}

	return release, nil
}
