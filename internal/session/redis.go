package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// RedisPersister keeps the credential under a single redis key with no TTL,
// so several client processes can share one session.
type RedisPersister struct {
	rdb redis.Cmdable
	key string
}

// NewRedisPersister wraps an existing client.
func NewRedisPersister(rdb redis.Cmdable, key string) *RedisPersister {
	return &RedisPersister{rdb: rdb, key: key}
}

// DialRedis parses a redis URL, connects and pings.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opts.PoolSize = 2
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = readTimeout
	opts.WriteTimeout = writeTimeout

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return rdb, nil
}

// Load returns the stored credential, or "" when the key is absent.
func (p *RedisPersister) Load(ctx context.Context) (string, error) {
	v, err := p.rdb.Get(ctx, p.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Save overwrites the key.
func (p *RedisPersister) Save(ctx context.Context, credential string) error {
	return p.rdb.Set(ctx, p.key, credential, 0).Err()
}

// Remove deletes the key; deleting an absent key is fine.
func (p *RedisPersister) Remove(ctx context.Context) error {
	return p.rdb.Del(ctx, p.key).Err()
}
