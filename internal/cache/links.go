// Package cache holds the Redis-backed link-list cache. The cache is
// fail-open: any Redis error degrades to a database read and is only logged.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

const keyPrefix = "links"

// LinkCache caches the full (already flattened) link list per chat.
type LinkCache struct {
	rdb    *goredis.Client
	log    *logger.Logger
	ttl    time.Duration
	closed bool
	mu     sync.Mutex
}

// New creates a LinkCache from config. Returns nil (a no-op cache) when the
// cache is disabled.
func New(cfg Config, log *logger.Logger) (*LinkCache, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if !cfg.Enabled {
		return nil, nil
	}

	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)
	ttl, _ := time.ParseDuration(cfg.TTL)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	log = log.WithComponent("cache")
	log.Info("Redis client created", map[string]interface{}{
		"addr": cfg.Addr, "db": cfg.DB, "pool_size": cfg.PoolSize,
	})

	return &LinkCache{rdb: rdb, log: log, ttl: ttl}, nil
}

// Key builds the cache key for a chat's link list.
func Key(tgID int64) string {
	return keyPrefix + ":" + strconv.FormatInt(tgID, 10)
}

// Get returns the cached link list, or nil on miss or error.
func (c *LinkCache) Get(ctx context.Context, tgID int64) []model.LinkResponse {
	if c == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, Key(tgID)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("Cache read failed", map[string]interface{}{
				"tg_id": tgID, "error": err.Error(),
			})
		}
		return nil
	}

	var links []model.LinkResponse
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		c.log.Warn("Cache entry unreadable, dropping", map[string]interface{}{
			"tg_id": tgID, "error": err.Error(),
		})
		c.Invalidate(ctx, tgID)
		return nil
	}
	return links
}

// Set stores the chat's full link list.
func (c *LinkCache) Set(ctx context.Context, tgID int64, links []model.LinkResponse) {
	if c == nil {
		return
	}
	data, err := json.Marshal(links)
	if err != nil {
		c.log.Warn("Cache marshal failed", map[string]interface{}{
			"tg_id": tgID, "error": err.Error(),
		})
		return
	}
	if err := c.rdb.Set(ctx, Key(tgID), data, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", map[string]interface{}{
			"tg_id": tgID, "error": err.Error(),
		})
	}
}

// Invalidate drops the chat's cached link list. Mutating scrapper
// operations call this before touching the database.
func (c *LinkCache) Invalidate(ctx context.Context, tgID int64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, Key(tgID)).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", map[string]interface{}{
			"tg_id": tgID, "error": err.Error(),
		})
	}
}

// Ping verifies the Redis connection is alive.
func (c *LinkCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Safe to call on a nil cache or twice.
func (c *LinkCache) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.log.Info("Closing Redis connection")
	c.closed = true
	return c.rdb.Close()
}
