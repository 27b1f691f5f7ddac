// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hospital-api/internal/amap"
	"hospital-api/internal/providers"
	"hospital-api/internal/recommend"

	"github.com/redis/go-redis/v9"
)

// SessionHeader 会话号请求/响应头
const SessionHeader = "X-Session-ID"

// Searcher 会话内定位/搜索
type Searcher interface {
	Search(ctx context.Context, sess *recommend.Session, q recommend.Query) recommend.Result
}

// HealthReporter 数据源健康状态
type HealthReporter interface {
	Status() []providers.Health
}

// 文档注释：路由依赖
// 约束：AMap、Redis、Health 可为空；AMap 为空时代理接口返回 503，Redis 为空时代理不缓存。
type Deps struct {
	Service  Searcher
	Sessions *recommend.Sessions
	Health   HealthReporter
	AMap     *amap.Client
	Redis    *redis.Client
	// ProxyTTL 代理响应缓存时长，<=0 时取 1 小时
	ProxyTTL time.Duration
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	if d.ProxyTTL <= 0 {
		d.ProxyTTL = time.Hour
	}
	h := &handlers{d: d}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hospitals", h.hospitals)
	mux.HandleFunc("GET /hospitals/markers", h.markers)
	mux.HandleFunc("GET /hospitals/{id}", h.hospital)
	mux.HandleFunc("GET /amap/geo", h.amapGeo)
	mux.HandleFunc("GET /amap/around", h.amapAround)
	mux.HandleFunc("GET /health", h.health)
	return mux
}

type handlers struct {
	d Deps
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}
