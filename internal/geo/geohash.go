package geo

// 文档注释：轻量 geohash 编码（base32）
// 背景：用作缓存条目的成员名前缀，同一网格的条目在 Redis/日志中可直观聚合。
// 约束：精度 6 约 1.2km；不做邻域枚举。
var base32 = []byte("0123456789bcdefghjkmnpqrstuvwxyz")

func Geohash(p Point, precision int) string {
	latInt := [2]float64{-90, 90}
	lngInt := [2]float64{-180, 180}
	bits := [5]int{16, 8, 4, 2, 1}
	bit, ch := 0, 0
	even := true
	out := make([]byte, 0, precision)
	for len(out) < precision {
		if even {
			mid := (lngInt[0] + lngInt[1]) / 2
			if p.Lng >= mid {
				ch |= bits[bit]
				lngInt[0] = mid
			} else {
				lngInt[1] = mid
			}
		} else {
			mid := (latInt[0] + latInt[1]) / 2
			if p.Lat >= mid {
				ch |= bits[bit]
				latInt[0] = mid
			} else {
				latInt[1] = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			out = append(out, base32[ch])
			bit, ch = 0, 0
		}
	}
	return string(out)
}
