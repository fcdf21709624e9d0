package httpapi

import (
	"context"
	"fmt"

	"tukangin-platform/internal/config"
	"tukangin-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Throttle bounds repeated login attempts per identity.
type Throttle interface {
	Allow(ctx context.Context, email, ip string) (bool, error)
	Reset(ctx context.Context, email, ip string) error
}

// RedisThrottle counts attempts in Redis within a fixed window.
type RedisThrottle struct {
	rdb    *redis.Client
	limit  int
	window config.LoginConfig
}

func NewRedisThrottle(rdb *redis.Client, cfg config.LoginConfig) *RedisThrottle {
	return &RedisThrottle{rdb: rdb, limit: cfg.MaxAttempts, window: cfg}
}

func (t *RedisThrottle) Allow(ctx context.Context, email, ip string) (bool, error) {
	return utils.AllowAttempt(ctx, t.rdb, attemptKey(email, ip), t.limit, t.window.AttemptsWindow)
}

func (t *RedisThrottle) Reset(ctx context.Context, email, ip string) error {
	return utils.ResetAttempts(ctx, t.rdb, attemptKey(email, ip))
}

func attemptKey(email, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", email, ip)
}

// noThrottle admits everything; used when no Redis is wired (tests).
type noThrottle struct{}

func (noThrottle) Allow(context.Context, string, string) (bool, error) { return true, nil }
func (noThrottle) Reset(context.Context, string, string) error        { return nil }
