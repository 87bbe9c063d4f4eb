package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mealcycle-backend/internal/clients/redis"
	"github.com/yungbote/mealcycle-backend/internal/observability"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

type Clients struct {
	Redis     *goredis.Client
	ReadCache *redis.ReadCache
}

// wireClients connects optional backends. An unreachable redis disables the
// read cache instead of failing startup.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) Clients {
	log.Info("Wiring clients...")
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set; read cache disabled")
		return Clients{}
	}
	rdb, err := redis.Dial(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable; read cache disabled", "addr", cfg.Redis.Addr, "error", err)
		return Clients{}
	}
	cache, err := redis.NewReadCache(log, rdb, cfg.Redis, metrics)
	if err != nil {
		_ = rdb.Close()
		log.Warn("init read cache failed; read cache disabled", "error", err)
		return Clients{}
	}
	return Clients{Redis: rdb, ReadCache: cache}
}

func (c *Clients) Close(log *logger.Logger) {
	if c == nil || c.Redis == nil {
		return
	}
	if err := c.Redis.Close(); err != nil {
		log.Warn("close redis", "error", err)
	}
}
