package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by an UnlockFunc when the lock expired or was taken over before release.
var ErrLockLost = errors.New("distributed lock no longer held")

const defaultPollInterval = 50 * time.Millisecond

// releaseScript deletes the key only if it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Redis is a Locker for multi-process deployments using Redis SET NX PX.
type Redis struct {
	client       *backend.Client
	prefix       string
	pollInterval time.Duration
}

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithPollInterval sets how often a contended lock is retried.
func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.pollInterval = d
	}
}

// NewRedis creates a Redis locker. Keys are stored as prefix + "lock:" + key.
func NewRedis(client *backend.Client, prefix string, opts ...RedisOption) *Redis {
	r := &Redis{
		client:       client,
		prefix:       prefix,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	lockKey := r.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := releaseScript.Run(ctx, r.client, []string{lockKey}, token).Int()
				if err != nil {
					return fmt.Errorf("redis error releasing lock: %w", err)
				}
				if n == 0 {
					return fmt.Errorf("%w: %s", ErrLockLost, key)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
