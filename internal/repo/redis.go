package repo

import (
	"context"

	"ohhell-service/internal/config"
	"ohhell-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// InitRedis connects when an address is configured. Redis is only used to
// reserve room codes across instances, so a single-node deployment can skip
// it entirely.
func InitRedis() {
	conf := config.GlobalConfig.Redis
	if conf.Addr == "" {
		logger.Log.Info("no redis configured, room codes are instance-local")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
}
