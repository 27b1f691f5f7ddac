package locate

import (
	"context"
	"net"

	"hospital-api/internal/geo"

	"github.com/oschwald/geoip2-golang"
)

// 文档注释：GeoLite2/GeoIP2 City 库定位
// 约束：库内坐标为 WGS84，返回前转换为 GCJ-02；经纬度为 0 视为无数据。
type GeoIPLocator struct {
	db *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIPLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIPLocator{db: db}, nil
}

func (l *GeoIPLocator) Name() string { return "geoip" }

func (l *GeoIPLocator) Locate(_ context.Context, ip string) (geo.Point, bool) {
	p := net.ParseIP(ip)
	if p == nil {
		return geo.Point{}, false
	}
	rec, err := l.db.City(p)
	if err != nil {
		return geo.Point{}, false
	}
	pt := geo.Point{Lat: rec.Location.Latitude, Lng: rec.Location.Longitude}
	if !pt.Valid() {
		return geo.Point{}, false
	}
	return geo.WGS84ToGCJ02(pt), true
}

func (l *GeoIPLocator) Close() error { return l.db.Close() }
