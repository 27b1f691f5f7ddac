package main

import (
	"context"
	"os"

	"hospital-api/internal/config"
	"hospital-api/internal/logger"
	"hospital-api/internal/migrate"
	"hospital-api/internal/proximity"
	"hospital-api/internal/utils"

	"github.com/redis/go-redis/v9"
)

// openRedis：缓存后端为 redis 或显式配置了 REDIS_HOST 时打开客户端；不可达返回 nil
func openRedis(ctx context.Context, cfg config.Config) *redis.Client {
	l := logger.L()
	if cfg.CacheBackend != "redis" && os.Getenv("REDIS_HOST") == "" {
		l.Info("redis_disabled")
		return nil
	}
	rc := utils.OpenRedisFromEnv()
	if err := utils.PingRedis(ctx, rc); err != nil {
		l.Error("redis_ping_error", "err", err)
		_ = rc.Close()
		return nil
	}
	l.Info("redis_ping_ok")
	return rc
}

// 文档注释：按 CACHE_BACKEND 选择邻近缓存存储
// 背景：redis / postgres 不可用时回退到进程内存储，服务照常启动。
// 返回：存储与关闭函数；rc 由调用方关闭，关闭函数只释放本函数打开的连接。
func openStore(ctx context.Context, cfg config.Config, rc *redis.Client) (proximity.Store, func()) {
	l := logger.L()
	memory := func() (proximity.Store, func()) {
		return proximity.NewMemoryStore(cfg.CacheMemCap), func() {}
	}
	switch cfg.CacheBackend {
	case "redis":
		if rc == nil {
			l.Warn("proximity_store_fallback", "want", "redis", "use", "memory")
			return memory()
		}
		return proximity.NewRedisStore(rc, ""), func() {}
	case "postgres":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			return memory()
		}
		if err := utils.PingPostgres(ctx, db); err != nil {
			l.Error("db_ping_error", "err", err)
			_ = db.Close()
			return memory()
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			_ = db.Close()
			return memory()
		}
		return proximity.NewPostgresStore(db), func() { _ = db.Close() }
	case "memory", "":
		return memory()
	default:
		l.Warn("proximity_store_unknown", "backend", cfg.CacheBackend)
		return memory()
	}
}
