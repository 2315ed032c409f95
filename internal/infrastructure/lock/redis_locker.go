// Package lock provides per-key mutual exclusion so concurrent isolation
// requests for the same customer cannot interleave router commands.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "lock:"

// Release-only-if-owner. Deleting unconditionally would release a lock
// that expired and was re-acquired by another process.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements distributed locking using Redis SETNX.
// Suitable for deployments where multiple instances share routers.
type RedisLocker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLocker creates a locker backed by an existing Redis client
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, logger: logger}
}

// TryAcquire attempts to take the lock without blocking. When acquired it
// returns a release func that only the acquiring caller can use.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Release runs on cleanup paths where the request context may be done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}
