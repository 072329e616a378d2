// Package redis connects the session store to Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"warbler/internal/session"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// Client is the process-wide Redis connection pool.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient parses redisURL (redis://[:password@]host:port[/db]) and opens a
// lazily connecting pool. Timeouts missing from the URL get sane defaults.
func NewClient(redisURL string, logger *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = dialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = ioTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = ioTimeout
	}

	logger.Info("redis configured", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return &Client{Client: redis.NewClient(opts), logger: logger}, nil
}

// Ping fails fast at start-up when Redis is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// SessionStore returns a session store backed by this pool.
func (c *Client) SessionStore() *session.RedisStore {
	return session.NewRedisStore(c.Client)
}

func (c *Client) Close() error {
	if err := c.Client.Close(); err != nil {
		c.logger.Warn("close redis", zap.Error(err))
		return err
	}
	return nil
}
