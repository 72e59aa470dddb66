// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// errorCounter counts failed Redis commands by command name. Cache misses
// are not failures.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return count(cmd.Name(), next(ctx, cmd))
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return count("pipeline", next(ctx, cmds))
	}
}

func count(command string, err error) error {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(command).Inc()
	}
	return err
}

// ParseAddr accepts either host:port or a redis:// URL.
func ParseAddr(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty redis address")
	}
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// NewClient returns a client for opts with command error counting.
func NewClient(opts *redis.Options) *redis.Client {
	client := redis.NewClient(opts)
	client.AddHook(errorCounter{})
	return client
}

// InitRedis connects to addr. It returns nil when addr is invalid or Redis
// does not answer; callers then run uncached.
func InitRedis(addr string) *redis.Client {
	opts, err := ParseAddr(addr)
	if err != nil {
		observability.Logger.Warn("redis disabled", slog.String("error", err.Error()))
		return nil
	}

	client := NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("redis unreachable, running uncached",
			slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}

	observability.Logger.Info("redis connected", slog.String("addr", opts.Addr))
	return client
}
