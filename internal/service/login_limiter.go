package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLoginRateLimited signals that an email or client address exhausted
// its login attempts for the current window.
var ErrLoginRateLimited = errors.New("too many login attempts")

// LoginLimiter throttles login attempts.
type LoginLimiter interface {
	Allow(ctx context.Context, email, clientIP string) error
}

// redisLoginLimiter is a fixed-window counter per email and per client
// address. An unreachable Redis fails open: logins proceed and the
// outage is logged.
type redisLoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter builds a Redis-backed limiter.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &redisLoginLimiter{client: client, maxAttempts: maxAttempts, window: window, logger: logger}
}

func (l *redisLoginLimiter) Allow(ctx context.Context, email, clientIP string) error {
	if err := l.allowKey(ctx, "login:email:"+email); err != nil {
		return err
	}
	if clientIP != "" {
		return l.allowKey(ctx, "login:ip:"+clientIP)
	}
	return nil
}

func (l *redisLoginLimiter) allowKey(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
	if count > int64(l.maxAttempts) {
		return ErrLoginRateLimited
	}
	return nil
}
