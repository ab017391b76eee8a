package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	_ Cache     = (*RedisCache)(nil)
	_ io.Closer = (*RedisCache)(nil)
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a Cache backed by a Redis server.
type RedisCache struct {
	rdb               *redis.Client
	createdInternally bool
}

// NewRedisCache wraps rdb, or dials a new client from opts when rdb is nil.
// A dialed client must answer a ping before it is used.
func NewRedisCache(rdb *redis.Client, opts *RedisOptions, logger zerolog.Logger) (*RedisCache, error) {
	if rdb != nil {
		return &RedisCache{rdb: rdb}, nil
	}
	if opts == nil {
		opts = &RedisOptions{}
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis cache connected")
	return &RedisCache{rdb: rdb, createdInternally: true}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Close closes the client only if NewRedisCache dialed it.
func (c *RedisCache) Close() error {
	if c.createdInternally {
		return c.rdb.Close()
	}
	return nil
}

// Ping reports whether the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
