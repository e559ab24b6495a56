// 包 utils：外部依赖连接工具（Redis / PostgreSQL / 自签证书）
package utils

import (
	"os"
	"strconv"

	"bizmap/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisOptionsFromEnv：REDIS_HOST / REDIS_PORT / REDIS_PASS / REDIS_DB
// 约束：REDIS_DB 解析失败或为负时回退到 0
func RedisOptionsFromEnv() *redis.Options {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	return &redis.Options{Addr: host + ":" + port, Password: os.Getenv("REDIS_PASS"), DB: db}
}

// OpenRedisFromEnv：发号器选择 redis 时使用
func OpenRedisFromEnv() *redis.Client {
	opt := RedisOptionsFromEnv()
	logger.L().Debug("redis_env", "addr", opt.Addr, "db", opt.DB)
	return redis.NewClient(opt)
}
