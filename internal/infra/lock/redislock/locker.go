package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rentbook/internal/app/policies"
)

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 25 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes commands across processes with SET NX PX leases.
// A lease outlives a crashed holder by at most TTL.
type Locker struct {
	Client  redis.UniversalClient
	Prefix  string
	TTL     time.Duration
	Retry   time.Duration
	Timeout time.Duration
	Logger  *slog.Logger
}

func New(client redis.UniversalClient, prefix string, timeout time.Duration, logger *slog.Logger) *Locker {
	return &Locker{Client: client, Prefix: prefix, Timeout: timeout, Logger: logger}
}

// NewClient builds a client from an address like "localhost:6379".
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Ping checks the connection for the readiness check.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	retry := l.Retry
	if retry <= 0 {
		retry = defaultRetry
	}
	fullKey := l.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retry)
	defer ticker.Stop()
	for {
		ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, policies.ErrLockTimeout
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, policies.ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(fullKey, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, l.Client, []string{fullKey}, token).Err(); err != nil && l.Logger != nil {
			l.Logger.Warn("redis lock release failed", "key", fullKey, "err", err)
		}
	}
}

var _ policies.Locker = (*Locker)(nil)
