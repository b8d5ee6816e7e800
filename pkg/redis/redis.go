package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type config struct {
	poolSize      int
	minIdleConns  int
	attempts      int
	backoff       time.Duration
	dialTimeout   time.Duration
	ioTimeout     time.Duration
	maxIdleTime   time.Duration
	maxActiveTime time.Duration
}

// Option tunes the client created by Open.
type Option func(*config)

// WithPoolSize caps the connection pool. Default: 10.
func WithPoolSize(n int) Option {
	return func(c *config) { c.poolSize = n }
}

// WithMinIdleConns keeps n connections warm. Default: 2.
func WithMinIdleConns(n int) Option {
	return func(c *config) { c.minIdleConns = n }
}

// WithRetry sets how many times Open pings before giving up and the base
// backoff between attempts, which grows linearly. Default: 3 attempts, 2s.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *config) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

// WithTimeouts sets the dial timeout and the read/write timeout.
func WithTimeouts(dial, io time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = dial
		c.ioTimeout = io
	}
}

// WithConnLifetime bounds how long a pooled connection may idle and live.
func WithConnLifetime(maxIdle, maxActive time.Duration) Option {
	return func(c *config) {
		c.maxIdleTime = maxIdle
		c.maxActiveTime = maxActive
	}
}

// Open parses a redis:// or rediss:// URL and returns a pinged client.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidURL
	}

	cfg := &config{
		poolSize:      10,
		minIdleConns:  2,
		attempts:      3,
		backoff:       2 * time.Second,
		dialTimeout:   5 * time.Second,
		ioTimeout:     3 * time.Second,
		maxIdleTime:   10 * time.Minute,
		maxActiveTime: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = cfg.poolSize
	ro.MinIdleConns = cfg.minIdleConns
	ro.DialTimeout = cfg.dialTimeout
	ro.ReadTimeout = cfg.ioTimeout
	ro.WriteTimeout = cfg.ioTimeout
	ro.ConnMaxIdleTime = cfg.maxIdleTime
	ro.ConnMaxLifetime = cfg.maxActiveTime

	return dial(ctx, ro, max(cfg.attempts, 1), cfg.backoff)
}

func dial(ctx context.Context, ro *redis.Options, attempts int, backoff time.Duration) (redis.UniversalClient, error) {
	var lastErr error

	for i := range attempts {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, time.Duration(i+1)*backoff); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ping returns a readiness check for the client.
func Ping(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnavailable
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnavailable, err)
		}
		return nil
	}
}

// Close returns a shutdown hook that closes the client.
func Close(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
