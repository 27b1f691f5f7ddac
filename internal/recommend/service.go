// 包 recommend：查询中心解析、缓存与数据源编排、会话代际控制
package recommend

import (
	"context"
	"errors"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/locate"
	"hospital-api/internal/logger"
	"hospital-api/internal/metrics"
	"hospital-api/internal/poi"
	"hospital-api/internal/providers"
	"hospital-api/internal/proximity"

	"golang.org/x/sync/singleflight"
)

const (
	WarnEmpty       = "高德API无结果，请尝试其他搜索方式或调整搜索范围。"
	WarnUnavailable = "医院数据获取失败，请稍后再试。"
	WarnGeocode     = "地址定位失败，已用当前位置"
)

// 查询中心来源
const (
	CenterCoords  = "coords"
	CenterAddress = "address"
	CenterIP      = "ip"
	CenterLast    = "last"
	CenterDefault = "default"
)

// Fetcher 数据源链
type Fetcher interface {
	Fetch(ctx context.Context, center geo.Point, radiusM int) (providers.Result, error)
}

// Cache 邻近缓存
type Cache interface {
	Get(ctx context.Context, center geo.Point) (proximity.Entry, bool, error)
	Set(ctx context.Context, center geo.Point, hs []poi.Hospital, source string, ttl time.Duration) (proximity.Entry, error)
}

// Query 一次定位/搜索请求
type Query struct {
	Center   *geo.Point
	Address  string
	City     string
	ClientIP string
}

// Result 一次定位/搜索的终态
type Result struct {
	Generation    uint64         `json:"generation"`
	Stale         bool           `json:"stale"`
	Center        geo.Point      `json:"center"`
	CenterSource  string         `json:"centerSource"`
	LocateWarning string         `json:"locateWarning,omitempty"`
	Hospitals     []poi.Hospital `json:"hospitals"`
	IsSample      bool           `json:"isSample"`
	SampleReason  string         `json:"sampleReason,omitempty"`
	Warning       string         `json:"warning,omitempty"`
	Cache         string         `json:"cache"`
	Source        string         `json:"source,omitempty"`
}

// Options 服务依赖；Cache、Geocoder、Locator 可为空
type Options struct {
	Fetcher       Fetcher
	Cache         Cache
	Geocoder      locate.Geocoder
	Locator       locate.Locator
	RadiusM       int
	DefaultCenter geo.Point
	// FetchTimeout 合并后的上游调用时限，默认 20s
	FetchTimeout time.Duration
}

// 文档注释：推荐服务
// 背景：先查邻近缓存，未命中再走数据源链（链内对每个数据源结果执行流水线），成功且非样例数据时写回缓存。
// 约束：任何失败都收敛为“空列表 + 提示”的终态，不向调用方返回错误；相同中心的并发请求合并为一次上游调用，
// 合并调用不继承任一请求的取消，由 FetchTimeout 兜底，缓存写回只在合并调用内执行一次。
type Service struct {
	fetcher       Fetcher
	cache         Cache
	geocoder      locate.Geocoder
	locator       locate.Locator
	radiusM       int
	defaultCenter geo.Point
	fetchTimeout  time.Duration
	sf            singleflight.Group
}

func NewService(o Options) *Service {
	if o.RadiusM <= 0 {
		o.RadiusM = 5000
	}
	if !o.DefaultCenter.Valid() {
		o.DefaultCenter = geo.Point{Lat: 39.9336, Lng: 116.4402}
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 20 * time.Second
	}
	return &Service{
		fetcher:       o.Fetcher,
		cache:         o.Cache,
		geocoder:      o.Geocoder,
		locator:       o.Locator,
		radiusM:       o.RadiusM,
		defaultCenter: o.DefaultCenter,
		fetchTimeout:  o.FetchTimeout,
	}
}

// 文档注释：解析查询中心
// 顺序：显式坐标 → 地址地理编码 → 访问者 IP → 上一次中心 → 默认中心。
// 约束：地理编码失败时回退到上一次中心（无则默认中心）并给出提示，不中断流程。
func (s *Service) ResolveCenter(ctx context.Context, q Query, last *geo.Point) (geo.Point, string, string) {
	fallback := func() (geo.Point, string) {
		if last != nil && last.Valid() {
			return *last, CenterLast
		}
		return s.defaultCenter, CenterDefault
	}
	if q.Center != nil && q.Center.Valid() {
		metrics.LocateTotal.WithLabelValues(CenterCoords).Inc()
		return *q.Center, CenterCoords, ""
	}
	if q.Address != "" {
		if s.geocoder != nil {
			p, err := s.geocoder.Geocode(ctx, q.Address, q.City)
			if err == nil {
				metrics.LocateTotal.WithLabelValues(CenterAddress).Inc()
				return p, CenterAddress, ""
			}
			logger.L().Warn("geocode_fallback", "address", q.Address, "err", err)
		}
		p, how := fallback()
		metrics.LocateTotal.WithLabelValues(how).Inc()
		return p, how, WarnGeocode
	}
	if s.locator != nil && locate.Public(q.ClientIP) {
		if p, ok := s.locator.Locate(ctx, q.ClientIP); ok {
			metrics.LocateTotal.WithLabelValues(CenterIP).Inc()
			return p, CenterIP, ""
		}
	}
	p, how := fallback()
	metrics.LocateTotal.WithLabelValues(how).Inc()
	return p, how, ""
}

// 文档注释：按中心获取展示列表
// 返回：Cache 为 hit/miss/bypass；失败时 Hospitals 为空切片且 Warning 非空。
func (s *Service) Recommend(ctx context.Context, center geo.Point) Result {
	t0 := time.Now()
	defer func() { metrics.RequestDurationMs.Observe(float64(time.Since(t0).Milliseconds())) }()
	res := Result{Center: center, Cache: "bypass", Hospitals: []poi.Hospital{}}
	if s.cache != nil {
		e, ok, err := s.cache.Get(ctx, center)
		switch {
		case err != nil:
			logger.L().Warn("proximity_get_error", "err", err)
		case ok:
			metrics.RequestsTotal.WithLabelValues("cache_hit").Inc()
			res.Cache = "hit"
			res.Source = e.Source
			res.Hospitals = e.Hospitals
			return res
		default:
			res.Cache = "miss"
		}
	}
	v, err, _ := s.sf.Do(center.Key(), func() (interface{}, error) {
		return s.fetch(ctx, center)
	})
	if err != nil {
		if errors.Is(err, providers.ErrEmptyResult) {
			res.Warning = WarnEmpty
			metrics.EmptyResultsTotal.WithLabelValues("empty").Inc()
		} else {
			res.Warning = WarnUnavailable
			metrics.EmptyResultsTotal.WithLabelValues("unavailable").Inc()
		}
		metrics.RequestsTotal.WithLabelValues("empty").Inc()
		logger.L().Warn("recommend_empty", "lat", center.Lat, "lng", center.Lng, "err", err)
		return res
	}
	pr := v.(providers.Result)
	res.Hospitals = pr.Hospitals
	res.Source = pr.Provider
	res.IsSample = pr.IsSample
	res.SampleReason = pr.SampleReason
	metrics.RequestsTotal.WithLabelValues("fetched").Inc()
	logger.L().Info("recommend_ok", "source", pr.Provider, "count", len(pr.Hospitals), "sample", pr.IsSample)
	return res
}

// fetch 合并调用的主体：脱离发起请求的取消，成功且非样例数据时写回缓存
func (s *Service) fetch(ctx context.Context, center geo.Point) (providers.Result, error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()
	pr, err := s.fetcher.Fetch(fctx, center, s.radiusM)
	if err != nil {
		return pr, err
	}
	if s.cache != nil && !pr.IsSample {
		if _, err := s.cache.Set(fctx, center, pr.Hospitals, pr.Provider, 0); err != nil {
			logger.L().Warn("proximity_set_error", "err", err)
		}
	}
	return pr, nil
}

// 文档注释：会话内的一次定位/搜索
// 背景：领取代际号后解析中心并获取列表；只有仍是最新代际时才写回会话，过期响应带 stale 标记返回。
func (s *Service) Search(ctx context.Context, sess *Session, q Query) Result {
	gen := sess.Begin()
	var last *geo.Point
	if p, ok := sess.LastCenter(); ok {
		last = &p
	}
	center, how, warn := s.ResolveCenter(ctx, q, last)
	res := s.Recommend(ctx, center)
	res.Generation = gen
	res.CenterSource = how
	res.LocateWarning = warn
	res.Stale = !sess.Apply(gen, res)
	if res.Stale {
		logger.L().Info("session_stale_result", "session", sess.ID, "generation", gen)
	}
	return res
}
