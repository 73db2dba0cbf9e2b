package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "recall:lock:"

// Deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a Locker backed by SET NX PX, shared by every replica pointed at
// the same server.
type Redis struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, logger *slog.Logger) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger.With(slog.String("component", "redis_lock"))}
}

// DialRedis parses a redis:// URL, connects and pings the server.
func DialRedis(ctx context.Context, url string, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, logger), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Locker = (*Redis)(nil)

// TryLock implements Locker.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	token := newToken()
	ok, err := r.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	r.logger.DebugContext(ctx, "lock acquired", slog.String("key", key), slog.Duration("ttl", ttl))
	return &redisLock{r: r, key: keyPrefix + key, token: token}, nil
}

type redisLock struct {
	r     *Redis
	key   string
	token string
}

func (l *redisLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.r.client, []string{l.key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
