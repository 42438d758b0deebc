package redis

import (
	"context"
	"time"

	"campus-club-system/config"

	"github.com/redis/go-redis/v9"
)

// Client 全局 redis 客户端，未配置 Redis 时为 nil，使用方需要自行降级
var Client *redis.Client

func Init() {
	cfg := config.Get().Redis
	if cfg.Host == "" {
		return
	}
	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Client.Ping(ctx).Err(); err != nil {
		// 连不上时不阻断启动，统计缓存自动退化为直查数据库
		Client = nil
	}
}
