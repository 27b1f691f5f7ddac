package migrate

import (
	"context"
	"database/sql"

	"hospital-api/internal/logger"
)

// 背景：首次运行自动创建邻近缓存表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS _proximity_cache (
            id TEXT PRIMARY KEY,
            center_lat DOUBLE PRECISION NOT NULL,
            center_lng DOUBLE PRECISION NOT NULL,
            stored_at TIMESTAMPTZ NOT NULL,
            expires_at TIMESTAMPTZ NOT NULL,
            source TEXT NOT NULL DEFAULT '',
            payload JSONB NOT NULL
        )`,
	`CREATE INDEX IF NOT EXISTS idx_proximity_center ON _proximity_cache(center_lat, center_lng)`,
	`CREATE INDEX IF NOT EXISTS idx_proximity_stored ON _proximity_cache(stored_at)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
