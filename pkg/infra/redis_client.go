package infra

import (
	"context"
	"strconv"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/redis/go-redis/v9"
)

// ProvideRedisClient returns nil when no redis host is configured.
// Redis is only used for publishing display-board stats, the server
// runs fine without it.
func ProvideRedisClient(cfg *config.Config, loggerFactory *LoggerFactory) (*redis.Client, error) {
	logger := loggerFactory.Create("RedisClient").Sugar()
	if cfg.RedisHost == "" {
		logger.Infof("no redis host configured, stats publishing disabled")
		return nil, nil
	}

	redisDb := 0
	if cfg.RedisDB != "" {
		parsed, err := strconv.Atoi(cfg.RedisDB)
		if err != nil {
			logger.Errorf("invalid redis db %v", err)
			return nil, err
		}
		redisDb = parsed
	}

	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost,
		DB:   redisDb,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			logger.Infof("redis connected to host[%v] db[%v]", cfg.RedisHost, redisDb)
			return nil
		},
	}), nil
}
