package cache

import (
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/config"
)

// NewStore builds the configured cache backend. A Redis backend that cannot be reached
// falls back to the in-process cache; the returned *RedisCache is nil in that case.
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, *RedisCache) {
	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisCache, err := NewRedisCache(cfg.Redis, cfg.Cache.TTL, logger)
		if err == nil {
			return redisCache, redisCache
		}
		logger.Warn("Failed to connect to Redis, using in-process cache", zap.Error(err))
	}

	logger.Info("Using in-process price cache", zap.Duration("ttl", cfg.Cache.TTL))
	return NewMemoCache(cfg.Cache.TTL), nil
}
