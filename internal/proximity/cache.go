// 包 proximity：按查询中心邻近度复用历史结果的缓存
package proximity

import (
	"context"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/metrics"
	"hospital-api/internal/poi"

	"github.com/google/uuid"
)

const (
	// DefaultRadiusMeters 命中半径
	DefaultRadiusMeters = 5000.0
	// DefaultLifetime 条目寿命
	DefaultLifetime = 30 * 24 * time.Hour
)

// Entry 一次完整结果集及其查询中心与写入时间
type Entry struct {
	ID        string         `json:"id"`
	Center    geo.Point      `json:"center"`
	StoredAt  time.Time      `json:"storedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Source    string         `json:"source,omitempty"`
	Hospitals []poi.Hospital `json:"hospitals"`
}

// 文档注释：条目存储后端
// 约束：Candidates 按写入先后返回（最早在前），可以包含半径外或已过期的条目，由 Cache 负责判定。
type Store interface {
	Name() string
	Candidates(ctx context.Context, center geo.Point, radiusM float64) ([]Entry, error)
	Append(ctx context.Context, e Entry) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// 文档注释：邻近缓存
// 背景：新查询中心落在某条历史条目中心的半径内且条目未过期时，原样返回该条目的列表，不再请求上游也不重跑流水线。
// 约束：过期条目只在读取时惰性删除，不做后台清扫；时钟可注入以便测试。
type Cache struct {
	store    Store
	radius   float64
	lifetime time.Duration
	now      func() time.Time
}

type Option func(*Cache)

func WithRadius(m float64) Option {
	return func(c *Cache) {
		if m > 0 {
			c.radius = m
		}
	}
}

func WithLifetime(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.lifetime = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{store: store, radius: DefaultRadiusMeters, lifetime: DefaultLifetime, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Radius 命中半径（米）
func (c *Cache) Radius() float64 { return c.radius }

// Lifetime 条目寿命
func (c *Cache) Lifetime() time.Duration { return c.lifetime }

func (c *Cache) expired(e *Entry, now time.Time) bool {
	if now.Sub(e.StoredAt) >= c.lifetime {
		return true
	}
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// 文档注释：读取
// 返回：首个“中心在半径内且未过期”的条目；ok=false 表示未命中。
// 约束：遍历途中遇到的过期条目被删除，删除失败只记日志。
func (c *Cache) Get(ctx context.Context, center geo.Point) (Entry, bool, error) {
	name := c.store.Name()
	cands, err := c.store.Candidates(ctx, center, c.radius)
	if err != nil {
		metrics.ProximityLookupsTotal.WithLabelValues(name, "error").Inc()
		return Entry{}, false, err
	}
	now := c.now()
	for i := range cands {
		e := &cands[i]
		if c.expired(e, now) {
			metrics.ProximityExpiredTotal.WithLabelValues(name).Inc()
			if err := c.store.Remove(ctx, e.ID); err != nil {
				logger.L().Warn("proximity_remove_error", "store", name, "id", e.ID, "err", err)
			}
			continue
		}
		if d := center.DistanceTo(e.Center); d < c.radius {
			metrics.ProximityLookupsTotal.WithLabelValues(name, "hit").Inc()
			logger.L().Debug("proximity_hit", "store", name, "id", e.ID, "distance_m", int(d), "age", now.Sub(e.StoredAt).String())
			return *e, true, nil
		}
	}
	metrics.ProximityLookupsTotal.WithLabelValues(name, "miss").Inc()
	return Entry{}, false, nil
}

// 文档注释：写入
// 背景：每次新计算出的结果集追加为一条新条目，不覆盖旧条目。
// 约束：ttl<=0 或超过寿命时按寿命计算过期时间。
func (c *Cache) Set(ctx context.Context, center geo.Point, hs []poi.Hospital, source string, ttl time.Duration) (Entry, error) {
	if ttl <= 0 || ttl > c.lifetime {
		ttl = c.lifetime
	}
	now := c.now()
	e := Entry{
		ID:        geo.Geohash(center, 6) + ":" + uuid.NewString(),
		Center:    center,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
		Source:    source,
		Hospitals: hs,
	}
	if err := c.store.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	logger.L().Debug("proximity_set", "store", c.store.Name(), "id", e.ID, "count", len(hs))
	return e, nil
}

// Clear 清空全部条目
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
