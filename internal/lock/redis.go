package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// compare-and-delete so a holder whose ttl lapsed cannot free someone else's lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

type RedisLocker struct {
	Client redis.UniversalClient
	Prefix string

	// RetryDelay is the first back-off between SET NX attempts; it doubles up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

func NewRedis(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		Client:        client,
		Prefix:        prefix,
		RetryDelay:    25 * time.Millisecond,
		MaxRetryDelay: 400 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	fullKey := l.Prefix + key
	value := uuid.NewString()
	delay := l.RetryDelay

	for {
		ok, err := l.Client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", fullKey, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-timer.C:
		}
		if delay *= 2; delay > l.MaxRetryDelay {
			delay = l.MaxRetryDelay
		}
	}

	var (
		once   sync.Once
		relErr error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			relErr = releaseScript.Run(ctx, l.Client, []string{fullKey}, value).Err()
			if errors.Is(relErr, redis.Nil) {
				relErr = nil
			}
		})
		return relErr
	}, nil
}
