// 包 geo：坐标与距离工具，供去重、缓存命中与排序共用
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371000.0

// ErrMalformed 坐标文本无法解析
var ErrMalformed = errors.New("geo: malformed coordinate")

// 文档注释：球面距离（Haversine），返回米
// 背景：去重的 100 米邻接判定、缓存 5 公里命中半径与排序兜底距离都依赖这一函数。
// 约束：纯函数；对称；同一点返回 0。
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	sLat := math.Sin(dLat / 2)
	sLng := math.Sin(dLng / 2)
	a := sLat*sLat + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*sLng*sLng
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Point 经纬度坐标（十进制度）
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceTo 返回两点间距离（米）
func (p Point) DistanceTo(q Point) float64 {
	return DistanceMeters(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Valid 经纬度落在合法范围内且不是 (0,0) 占位值
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return false
	}
	return p.Lat != 0 || p.Lng != 0
}

// LngLat 生成高德接口使用的 "lng,lat" 文本
func (p Point) LngLat() string {
	return strconv.FormatFloat(p.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
}

// Key 量化到 5 位小数（约 1 米）的键，用于缓存与单飞合并
func (p Point) Key() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

// 文档注释：解析 "lng,lat" 组合坐标
// 背景：高德与合并数据源都以经度在前的文本返回位置。
// 约束：任一分量缺失或非数字时返回 ErrMalformed，由调用方静默丢弃。
func ParseLngLat(s string) (Point, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return p, nil
}
