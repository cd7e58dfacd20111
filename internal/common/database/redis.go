// internal/common/database/redis.go
package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"alternator-reqgen/internal/common/config"
	apperrors "alternator-reqgen/internal/common/errors"
)

// RedisClient owns the connection used by the redis history store.
type RedisClient struct {
	Client *redis.Client
}

// History traffic is a handful of pipelined writes per pass, so the pool stays small.
func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
		MinIdleConns: 0,
	}
}

// ConnectRedis dials cfg.Address and checks it answers PING.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	c := &RedisClient{Client: redis.NewClient(redisOptions(cfg))}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// WrapRedis adopts an existing client, e.g. one pointed at miniredis.
func WrapRedis(rdb *redis.Client) *RedisClient {
	return &RedisClient{Client: rdb}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewStoreFailedError("redis", "ping", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
