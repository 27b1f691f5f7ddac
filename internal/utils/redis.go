// 包 utils：外部连接工具（Redis、Postgres、TLS 证书），统一环境变量读取
package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"hospital-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisAddrFromEnv REDIS_HOST:REDIS_PORT，缺省 127.0.0.1:6379
func RedisAddrFromEnv() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	return host + ":" + port
}

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：REDIS_DB 解析失败或为负时回退到 0
func OpenRedisFromEnv() *redis.Client {
	addr := RedisAddrFromEnv()
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}

// PingRedis 带超时的连通性检查
func PingRedis(ctx context.Context, rc *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rc.Ping(ctx).Err()
}
