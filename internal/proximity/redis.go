package proximity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// 文档注释：Redis 存储
// 背景：多实例共享缓存；中心点写入 GEO 集合做半径预筛，结果集以 JSON 存在独立键上并带过期时间。
// 约束：GEO 成员没有过期机制，载荷键过期后在下一次读取时顺带清理成员。
type RedisStore struct {
	rc     *redis.Client
	prefix string
}

// NewRedisStore prefix 为空时使用 "hospital:proximity:"
func NewRedisStore(rc *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hospital:proximity:"
	}
	return &RedisStore{rc: rc, prefix: prefix}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) geoKey() string            { return s.prefix + "geo" }
func (s *RedisStore) entryKey(id string) string { return s.prefix + "entry:" + id }

func (s *RedisStore) Candidates(ctx context.Context, center geo.Point, radiusM float64) ([]Entry, error) {
	locs, err := s.rc.GeoRadius(ctx, s.geoKey(), center.Lng, center.Lat, &redis.GeoRadiusQuery{
		Radius: radiusM,
		Unit:   "m",
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis georadius: %w", err)
	}
	if len(locs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(locs))
	for i, l := range locs {
		keys[i] = s.entryKey(l.Name)
	}
	vals, err := s.rc.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make([]Entry, 0, len(vals))
	var stale []interface{}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, locs[i].Name)
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			logger.L().Warn("proximity_redis_decode_error", "id", locs[i].Name, "err", err)
			stale = append(stale, locs[i].Name)
			continue
		}
		out = append(out, e)
	}
	if len(stale) > 0 {
		if err := s.rc.ZRem(ctx, s.geoKey(), stale...).Err(); err != nil {
			logger.L().Warn("proximity_redis_prune_error", "count", len(stale), "err", err)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StoredAt.Equal(out[j].StoredAt) {
			return out[i].StoredAt.Before(out[j].StoredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *RedisStore) Append(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ttl := time.Until(e.ExpiresAt)
	if e.ExpiresAt.IsZero() || ttl <= 0 {
		ttl = DefaultLifetime
	}
	_, err = s.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.entryKey(e.ID), b, ttl)
		p.GeoAdd(ctx, s.geoKey(), &redis.GeoLocation{Name: e.ID, Longitude: e.Center.Lng, Latitude: e.Center.Lat})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, id string) error {
	_, err := s.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.entryKey(id))
		p.ZRem(ctx, s.geoKey(), id)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context) error {
	ids, err := s.rc.ZRange(ctx, s.geoKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.entryKey(id))
	}
	keys = append(keys, s.geoKey())
	return s.rc.Del(ctx, keys...).Err()
}
