package proximity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
)

// 文档注释：PostgreSQL 存储
// 背景：需要跨重启保留缓存时使用；按中心点外接矩形预筛，按写入时间排序返回。
// 约束：表结构由 migrate.EnsureSchema 创建；结果集以 JSONB 存储。
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Name() string { return "postgres" }

// bbox 半径对应的经纬度外接矩形
func bbox(c geo.Point, radiusM float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusM / 111320.0
	cos := math.Cos(c.Lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	dLng := radiusM / (111320.0 * cos)
	return c.Lat - dLat, c.Lat + dLat, c.Lng - dLng, c.Lng + dLng
}

func (s *PostgresStore) Candidates(ctx context.Context, center geo.Point, radiusM float64) ([]Entry, error) {
	minLat, maxLat, minLng, maxLng := bbox(center, radiusM)
	rows, err := s.db.QueryContext(ctx, `SELECT id, center_lat, center_lng, stored_at, expires_at, source, payload
        FROM _proximity_cache
        WHERE center_lat BETWEEN $1 AND $2 AND center_lng BETWEEN $3 AND $4
        ORDER BY stored_at ASC, id ASC`, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, fmt.Errorf("query proximity: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Center.Lat, &e.Center.Lng, &e.StoredAt, &e.ExpiresAt, &e.Source, &payload); err != nil {
			return nil, fmt.Errorf("scan proximity: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Hospitals); err != nil {
			logger.L().Warn("proximity_pg_decode_error", "id", e.ID, "err", err)
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Hospitals)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO _proximity_cache(id, center_lat, center_lng, stored_at, expires_at, source, payload)
        VALUES($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Center.Lat, e.Center.Lng, e.StoredAt, e.ExpiresAt, e.Source, payload)
	if err != nil {
		return fmt.Errorf("insert proximity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM _proximity_cache WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM _proximity_cache`)
	return err
}
