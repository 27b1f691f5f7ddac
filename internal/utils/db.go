package utils

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// BuildPostgresDSNFromEnv 由 PG_* 组装 DSN；密码做 URL 转义
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   env("PG_HOST", "localhost") + ":" + env("PG_PORT", "5432"),
		Path:   "/" + env("PG_DB", "hospital"),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(env("PG_USER", "postgres"), pass)
	} else {
		u.User = url.User(env("PG_USER", "postgres"))
	}
	u.RawQuery = "sslmode=" + env("PG_SSLMODE", "disable")
	return u.String()
}

// 文档注释：按环境变量打开 Postgres 连接池
// 约束：PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 解析失败时使用 20 / 10；sql.Open 不建立连接，需调用方 Ping。
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	maxOpen, maxIdle := 20, 10
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_OPEN_CONNS")); e == nil && n > 0 {
		maxOpen = n
	}
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_IDLE_CONNS")); e == nil && n >= 0 {
		maxIdle = n
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// PingPostgres 带超时的连通性检查
func PingPostgres(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
