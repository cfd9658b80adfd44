package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a Redis locker
type RedisOptions struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
	MaxWait    time.Duration
}

// Redis is a keyed lock shared by every instance using the same Redis.
// A lock expires after TTL if its holder dies.
type Redis struct {
	client redis.UniversalClient
	opts   RedisOptions
}

// NewRedis creates a Redis locker
func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 50 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 10 * time.Second
	}
	return &Redis{client: client, opts: opts}
}

// Obtain polls SET NX until the key is taken, ctx ends or MaxWait passes
func (r *Redis) Obtain(ctx context.Context, key string) (Lock, error) {
	fullKey := r.opts.Prefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, r.opts.MaxWait)
	defer cancel()

	ticker := time.NewTicker(r.opts.RetryDelay)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, fullKey, token, r.opts.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, err
		}
		if ok {
			return &redisLock{client: r.client, key: fullKey, token: token}, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
