// Package cache owns the process-wide Redis client used for rate limiting,
// realtime fan-out and readiness checks.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := observability.TraceRedis(ctx, cmd.Name())
		defer span.End()
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
			observability.RecordErrorInContext(ctx, err)
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient builds a client from a redis:// URL or a bare host:port.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})
	return c, nil
}

// InitRedis connects the shared client. Redis is optional: on failure the
// client stays nil and callers degrade (rate limits fail open, realtime is local only).
func InitRedis(addr string) {
	c, err := NewClient(addr)
	if err != nil {
		middleware.Logger.Warn("invalid REDIS_URL, continuing without redis", slog.String("error", err.Error()))
		client = nil
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without it", slog.String("error", err.Error()))
		_ = c.Close()
		client = nil
		return
	}
	middleware.Logger.Info("Redis connected successfully")
	client = c
}

// SetClient replaces the shared client; tests point it at miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance, or nil.
func GetClient() *redis.Client {
	return client
}

// Ping reports whether Redis answers. A nil client is reported as an error.
func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("redis not configured")
	}
	return client.Ping(ctx).Err()
}
