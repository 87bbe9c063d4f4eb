package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type Config struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// ReadCache stores JSON-encoded read projections under a key prefix with a TTL.
type ReadCache struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	prefix  string
	ttl     time.Duration
	metrics *observability.Metrics
}

// Dial connects and pings so a bad address fails at startup rather than on the first read.
func Dial(ctx context.Context, cfg Config) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewReadCache(log *logger.Logger, rdb goredis.UniversalClient, cfg Config, metrics *observability.Metrics) (*ReadCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "mealcycle"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReadCache{
		log:     log.With("service", "RedisReadCache"),
		rdb:     rdb,
		prefix:  prefix,
		ttl:     ttl,
		metrics: metrics,
	}, nil
}

func (c *ReadCache) key(k string) string { return c.prefix + ":" + k }

func (c *ReadCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.metrics.ObserveCache(key, "miss")
		return false, nil
	}
	if err != nil {
		c.metrics.ObserveCache(key, "error")
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// a payload we cannot decode is as good as absent; drop it
		c.log.Warn("bad cached payload", "key", key, "error", err)
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		c.metrics.ObserveCache(key, "miss")
		return false, nil
	}
	c.metrics.ObserveCache(key, "hit")
	return true, nil
}

func (c *ReadCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, c.ttl).Err()
}

func (c *ReadCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.rdb.Del(ctx, full...).Err()
}
