package locate

import (
	"context"
	"strings"
	"sync"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
)

// Geocoder 地址 → 坐标
type Geocoder interface {
	Geocode(ctx context.Context, address, city string) (geo.Point, error)
}

type searcher interface {
	SearchByStr(ip string) (string, error)
}

// Region ip2region 解析出的行政区
type Region struct {
	Country  string
	Province string
	City     string
	ISP      string
}

// 文档注释：ip2region 城市级定位
// 背景：ip2region 只给出行政区文本，需要再经地理编码得到城市中心坐标；城市坐标在进程内缓存。
// 约束：仅在国家为中国且解析出省或市时才发起地理编码。
type RegionLocator struct {
	s        searcher
	geocoder Geocoder
	mu       sync.Mutex
	cities   map[string]geo.Point
}

func OpenRegion(v4Path string, g Geocoder) (*RegionLocator, error) {
	s, err := xdb.NewWithFileOnly(xdb.IPv4, v4Path)
	if err != nil {
		return nil, err
	}
	return newRegionLocator(s, g), nil
}

func newRegionLocator(s searcher, g Geocoder) *RegionLocator {
	return &RegionLocator{s: s, geocoder: g, cities: make(map[string]geo.Point)}
}

func (l *RegionLocator) Name() string { return "ip2region" }

// Lookup 返回 IP 对应的行政区
func (l *RegionLocator) Lookup(ip string) (Region, bool) {
	if ip == "" {
		return Region{}, false
	}
	s, err := l.s.SearchByStr(ip)
	if err != nil || s == "" {
		return Region{}, false
	}
	r := parseRegion(s)
	return r, r.Province != "" || r.City != ""
}

func (l *RegionLocator) Locate(ctx context.Context, ip string) (geo.Point, bool) {
	r, ok := l.Lookup(ip)
	if !ok || (r.Country != "" && r.Country != "中国") || l.geocoder == nil {
		return geo.Point{}, false
	}
	addr := r.Province + r.City
	l.mu.Lock()
	p, hit := l.cities[addr]
	l.mu.Unlock()
	if hit {
		return p, true
	}
	p, err := l.geocoder.Geocode(ctx, addr, r.City)
	if err != nil {
		logger.L().Debug("ip2region_geocode_error", "address", addr, "err", err)
		return geo.Point{}, false
	}
	l.mu.Lock()
	l.cities[addr] = p
	l.mu.Unlock()
	return p, true
}

// parseRegion 解析 "国家|区域|省份|城市|ISP"，0 与 unknown 视为空
func parseRegion(s string) Region {
	parts := strings.Split(s, "|")
	get := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		v := strings.TrimSpace(parts[i])
		if v == "0" || strings.EqualFold(v, "unknown") {
			return ""
		}
		return v
	}
	return Region{Country: get(0), Province: get(2), City: get(3), ISP: get(4)}
}
