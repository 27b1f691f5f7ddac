package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hospital-api/internal/amap"
	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
)

// GET /amap/geo?address=&city=
func (h *handlers) amapGeo(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	q := url.Values{}
	q.Set("address", address)
	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		q.Set("city", city)
	}
	h.proxy(w, r, "/v3/geocode/geo", q)
}

// 文档注释：GET /amap/around?location=lng,lat&radius=&types=
// 约束：types 逗号分隔转为高德的竖线分隔；radius 缺省 5000，types 缺省 090000。
func (h *handlers) amapAround(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	center, err := geo.ParseLngLat(v.Get("location"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid location")
		return
	}
	radius := amap.DefaultRadius
	if s := v.Get("radius"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid radius")
			return
		}
		radius = n
	}
	types := strings.ReplaceAll(strings.TrimSpace(v.Get("types")), ",", "|")
	if types == "" {
		types = amap.DefaultTypes
	}
	q := url.Values{}
	q.Set("location", center.LngLat())
	q.Set("radius", strconv.Itoa(radius))
	q.Set("types", types)
	h.proxy(w, r, "/v3/place/around", q)
}

// 文档注释：透传高德响应
// 背景：相同查询在 Redis 中缓存 ProxyTTL，命中时直接返回；Redis 读写失败不影响透传。
// 约束：高德的配额、key 错误以 HTTP 200 + status!="1" 返回，这类响应照常透传但不缓存。
func (h *handlers) proxy(w http.ResponseWriter, r *http.Request, path string, q url.Values) {
	if h.d.AMap == nil || !h.d.AMap.HasKey() {
		writeError(w, http.StatusServiceUnavailable, "amap key not configured")
		return
	}
	ctx := r.Context()
	key := "amap:" + strings.Trim(path, "/") + ":" + q.Encode()
	if b := h.cached(ctx, key); b != nil {
		writeRaw(w, b)
		return
	}
	b, err := h.d.AMap.Raw(ctx, path, q)
	if err != nil {
		logger.L().Warn("amap_proxy_error", "path", path, "err", err)
		code := http.StatusBadGateway
		if errors.Is(err, amap.ErrMissingKey) {
			code = http.StatusServiceUnavailable
		}
		writeError(w, code, "amap request failed")
		return
	}
	if st, info := bodyStatus(b); st != "1" {
		logger.L().Warn("amap_proxy_status_not_ok", "path", path, "status", st, "info", info)
	} else if h.d.Redis != nil {
		if err := h.d.Redis.Set(ctx, key, b, h.d.ProxyTTL).Err(); err != nil {
			logger.L().Debug("amap_proxy_cache_set_error", "err", err)
		}
	}
	writeRaw(w, b)
}

func bodyStatus(b []byte) (string, string) {
	var v struct {
		Status string `json:"status"`
		Info   string `json:"info"`
	}
	_ = json.Unmarshal(b, &v)
	return v.Status, v.Info
}

func (h *handlers) cached(ctx context.Context, key string) []byte {
	if h.d.Redis == nil {
		return nil
	}
	b, err := h.d.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	logger.L().Debug("amap_proxy_cache_hit", "key", key)
	return b
}

func writeRaw(w http.ResponseWriter, b []byte) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(b)
}
