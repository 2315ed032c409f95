package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		locker := NewMemoryLocker()

		release, acquired, err := locker.TryAcquire(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		_, again, err := locker.TryAcquire(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, again)

		release()

		_, reacquired, err := locker.TryAcquire(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, reacquired)
	})

	t.Run("independent keys do not contend", func(t *testing.T) {
		locker := NewMemoryLocker()

		_, first, err := locker.TryAcquire(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		_, second, err2 := locker.TryAcquire(ctx, "customer:2", time.Minute)
		require.NoError(t, err2)

		assert.True(t, first)
		assert.True(t, second)
	})

	t.Run("expired lock can be retaken", func(t *testing.T) {
		locker := NewMemoryLocker()

		_, acquired, err := locker.TryAcquire(ctx, "customer:1", time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired)

		time.Sleep(5 * time.Millisecond)

		_, retaken, err := locker.TryAcquire(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, retaken)
	})

	t.Run("expired entries are purged, not retained", func(t *testing.T) {
		locker := NewMemoryLocker()

		for _, key := range []string{"customer:1", "customer:2", "customer:3"} {
			_, acquired, err := locker.TryAcquire(ctx, key, time.Millisecond)
			require.NoError(t, err)
			require.True(t, acquired)
		}

		time.Sleep(5 * time.Millisecond)

		_, acquired, err := locker.TryAcquire(ctx, "customer:4", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		locker.mu.Lock()
		defer locker.mu.Unlock()
		assert.Len(t, locker.locks, 1)
	})
}
