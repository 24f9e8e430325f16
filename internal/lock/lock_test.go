package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "checkout:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, release(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInside)
	assert.Empty(t, l.slots)
}

func TestLocalLocker_ContextTimeout(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, release(context.Background()))
	require.NoError(t, release(context.Background()))

	again, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.NoError(t, again(context.Background()))
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	r1, err := l.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)
	r2, err := l.Acquire(context.Background(), "b", time.Second)
	require.NoError(t, err)
	require.NoError(t, r1(context.Background()))
	require.NoError(t, r2(context.Background()))
}

func TestRedisLocker_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, "storefront:test:")
	ctx := context.Background()

	release, err := l.Acquire(ctx, "checkout:42", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(waitCtx, "checkout:42", 5*time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))

	again, err := l.Acquire(ctx, "checkout:42", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
