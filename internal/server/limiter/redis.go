// Package limiter bounds verification and resend attempts per identity using Redis counters.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/authkeeper/internal/autherr"
)

const keyPrefix = "authkeeper:attempts:"

// incrWindowLua увеличивает счетчик и ставит TTL, если его нет.
// Ключ без TTL (например, после сбоя) тоже получает окно.
var incrWindowLua = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Config задает окно и лимит попыток
type Config struct {
	Window      time.Duration
	MaxAttempts int
}

// RedisLimiter is a fixed-window counter keyed by action and identity
type RedisLimiter struct {
	redis redis.UniversalClient
	cfg   Config
}

// NewRedisLimiter creates a limiter over an existing Redis client
func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		redis: client,
		cfg:   cfg,
	}
}

// Allow counts one attempt and fails with ErrTooManyAttempts once the window limit is exceeded.
func (l *RedisLimiter) Allow(ctx context.Context, action, identity string) error {
	key := attemptKey(action, identity)

	// окно начинается с первой попытки
	count, err := incrWindowLua.Run(ctx, l.redis, []string{key}, l.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}

	if count > int64(l.cfg.MaxAttempts) {
		return autherr.New(autherr.ErrTooManyAttempts, identity)
	}

	return nil
}

// Ping checks Redis availability
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.redis.Ping(ctx).Err()
}

func attemptKey(action, identity string) string {
	return keyPrefix + action + ":" + identity
}
