package geo

import "math"

const (
	krasovskyA  = 6378245.0
	krasovskyEE = 0.00669342162296594323
)

// 文档注释：WGS84 → GCJ-02
// 背景：IP 库返回 WGS84 坐标，高德周边检索与距离字段基于 GCJ-02；定位后统一转为 GCJ-02 再查询。
// 约束：国外坐标原样返回；误差在米级。
func WGS84ToGCJ02(p Point) Point {
	if OutOfChina(p) {
		return p
	}
	dLat, dLng := offset(p)
	return Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// 文档注释：GCJ-02 → WGS84（一次迭代近似）
// 约束：误差在数十米级，仅用于展示与调试。
func GCJ02ToWGS84(p Point) Point {
	if OutOfChina(p) {
		return p
	}
	dLat, dLng := offset(p)
	return Point{Lat: p.Lat - dLat, Lng: p.Lng - dLng}
}

// OutOfChina 粗略判定坐标是否在中国境外
func OutOfChina(p Point) bool {
	return p.Lng < 72.004 || p.Lng > 137.8347 || p.Lat < 0.8293 || p.Lat > 55.8271
}

func offset(p Point) (float64, float64) {
	dLat := transformLat(p.Lng-105.0, p.Lat-35.0)
	dLng := transformLng(p.Lng-105.0, p.Lat-35.0)
	radLat := p.Lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - krasovskyEE*magic*magic
	sqrtMagic := math.Sqrt(magic)
	dLat = (dLat * 180.0) / ((krasovskyA * (1 - krasovskyEE)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (krasovskyA / sqrtMagic * math.Cos(radLat) * math.Pi)
	return dLat, dLng
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLng(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
