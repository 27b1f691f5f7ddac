// 包 locate：服务端按访问者 IP 估算查询中心（替代浏览器定位）
package locate

import (
	"context"
	"net"
	"net/http"
	"strings"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
)

// Locator 返回 GCJ-02 坐标；ok=false 表示无法定位
type Locator interface {
	Name() string
	Locate(ctx context.Context, ip string) (geo.Point, bool)
}

// Chain 依次尝试，首个成功者生效
type Chain []Locator

func (c Chain) Name() string { return "chain" }

func (c Chain) Locate(ctx context.Context, ip string) (geo.Point, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if p, ok := l.Locate(ctx, ip); ok {
			logger.L().Debug("locate_ok", "by", l.Name(), "ip", ip, "lat", p.Lat, "lng", p.Lng)
			return p, true
		}
	}
	return geo.Point{}, false
}

// 文档注释：解析访问者 IP
// 背景：优先查询参数，其次常见反向代理头，最后 RemoteAddr；多层代理取 X-Forwarded-For 的第一个地址。
func ClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("X-Forwarded-For"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"CF-Connecting-IP", "X-Real-IP", "X-Client-IP"} {
		if x := strings.TrimSpace(h.Get(k)); x != "" {
			return x
		}
	}
	if x := h.Get("Forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := strings.Trim(x[i+4:], "\" ")
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\"[]")
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Public 是否为可定位的公网地址
func Public(ip string) bool {
	p := net.ParseIP(ip)
	if p == nil {
		return false
	}
	return !(p.IsLoopback() || p.IsPrivate() || p.IsUnspecified() || p.IsLinkLocalUnicast())
}
