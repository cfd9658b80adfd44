package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseLocker(t *testing.T, l Locker) {
	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lk, err := l.Obtain(ctx, "settle:a:2024-12-19")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			assert.NoError(t, lk.Release(ctx))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocal_Exclusive(t *testing.T) {
	exerciseLocker(t, NewLocal())
}

func TestLocal_IndependentKeys(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	a, err := l.Obtain(ctx, "a")
	require.NoError(t, err)
	b, err := l.Obtain(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, a.Release(ctx))
	require.NoError(t, b.Release(ctx))
	assert.Empty(t, l.slots)
}

func TestLocal_ContextCancel(t *testing.T) {
	l := NewLocal()
	held, err := l.Obtain(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Obtain(ctx, "k")
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, held.Release(context.Background()))
	require.NoError(t, held.Release(context.Background()))
	assert.Empty(t, l.slots)
}

func newRedisLocker(t *testing.T, opts RedisOptions) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, opts), mr
}

func TestRedis_Exclusive(t *testing.T) {
	l, _ := newRedisLocker(t, RedisOptions{Prefix: "test-lock:", RetryDelay: time.Millisecond})
	exerciseLocker(t, l)
}

func TestRedis_MaxWait(t *testing.T) {
	l, mr := newRedisLocker(t, RedisOptions{RetryDelay: time.Millisecond, MaxWait: 20 * time.Millisecond})
	ctx := context.Background()

	held, err := l.Obtain(ctx, "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:k"))
	assert.Equal(t, 30*time.Second, mr.TTL("lock:k"))

	_, err = l.Obtain(ctx, "k")
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, held.Release(ctx))
	assert.False(t, mr.Exists("lock:k"))
}

func TestRedis_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	l, mr := newRedisLocker(t, RedisOptions{TTL: time.Second, RetryDelay: time.Millisecond, MaxWait: 50 * time.Millisecond})
	ctx := context.Background()

	stale, err := l.Obtain(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	fresh, err := l.Obtain(ctx, "k")
	require.NoError(t, err)

	// The old holder's token no longer matches, so the key survives
	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("lock:k"))

	require.NoError(t, fresh.Release(ctx))
	assert.False(t, mr.Exists("lock:k"))
}
