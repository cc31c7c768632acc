// Package redisx — кеш листингов поверх go-redis. Все ключи получают префикс
// Namespace, чтобы несколько инсталляций делили один Redis.
package redisx

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr      string
	DB        int
	Password  string
	Namespace string
}

type Cache struct {
	rdb    redis.UniversalClient
	ns     string
	logger *log.Logger
}

func New(cfg Config, logger *log.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return NewWithClient(rdb, cfg.Namespace, logger)
}

func NewWithClient(rdb redis.UniversalClient, namespace string, logger *log.Logger) *Cache {
	return &Cache{rdb: rdb, ns: namespace, logger: logger}
}

func (c *Cache) key(k string) string {
	if c.ns == "" {
		return k
	}
	return c.ns + ":" + k
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Printf("PING failed: %v", err)
	}
	return err
}

func (c *Cache) Close() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Printf("error while closing: %v", err)
		return
	}
	c.logger.Println("closed")
}

// Get: промах — (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Printf("GET %q: error: %v", key, err)
		return nil, err
	}
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	err := c.rdb.Set(ctx, c.key(key), val, ttl).Err()
	if err != nil {
		c.logger.Printf("SET %q failed: %v", key, err)
	} else {
		c.logger.Printf("SET %q ok (%d bytes, ttl=%s)", key, len(val), ttl)
	}
	return err
}

func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key(key)).Result()
	if err != nil {
		c.logger.Printf("INCR %q failed: %v", key, err)
		return 0, err
	}
	c.logger.Printf("INCR %q -> %d", key, n)
	return n, nil
}
