// 包 amap：高德 Web 服务 REST 客户端（周边检索、地理编码）
package amap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/metrics"
	"hospital-api/internal/poi"
)

const (
	DefaultBaseURL = "https://restapi.amap.com"
	// DefaultTypes 医疗保健服务大类
	DefaultTypes = "090000"
	// DefaultRadius 周边检索半径（米）
	DefaultRadius = 5000
	maxBody       = 4 << 20
)

var (
	ErrMissingKey = errors.New("amap: missing key")
	// ErrStatus 高德返回 status!="1"
	ErrStatus = errors.New("amap: status not ok")
	// ErrNoGeocode 地理编码无结果
	ErrNoGeocode = errors.New("amap: no geocode result")
)

// 文档注释：周边检索响应
// 约束：pois 字段沿用兜底源原始结构，由 poi.IngestFallback 归一。
type AroundResponse struct {
	Status   string            `json:"status"`
	Info     string            `json:"info"`
	Infocode string            `json:"infocode"`
	Count    poi.FlexString    `json:"count"`
	POIs     []poi.RawFallback `json:"pois"`
}

// GeocodeResponse 地理编码响应
type GeocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Geocodes []struct {
		Location         poi.FlexString `json:"location"`
		FormattedAddress poi.FlexString `json:"formatted_address"`
		City             poi.FlexString `json:"city"`
		Adcode           poi.FlexString `json:"adcode"`
	} `json:"geocodes"`
}

// 文档注释：高德客户端
// 背景：服务端持有密钥，前端与流水线都经由此客户端访问高德，避免密钥外泄。
// 约束：http 客户端为空时使用 5s 超时的默认客户端；所有调用携带 ctx。
type Client struct {
	key  string
	base string
	hc   *http.Client
}

func NewClient(key string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{key: key, base: DefaultBaseURL, hc: hc}
}

// WithBaseURL 替换服务地址（测试或私有代理）
func (c *Client) WithBaseURL(u string) *Client {
	c.base = strings.TrimRight(u, "/")
	return c
}

// HasKey 是否配置了密钥
func (c *Client) HasKey() bool { return c.key != "" }

// 文档注释：原样转发
// 背景：/amap/* 代理接口直接透传高德响应体；密钥在此处注入。
// 返回：响应体字节；非 2xx 状态返回错误。
func (c *Client) Raw(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.key == "" {
		return nil, ErrMissingKey
	}
	endpoint := strings.Trim(path, "/")
	qq := url.Values{}
	for k, v := range q {
		qq[k] = v
	}
	qq.Set("key", c.key)
	u := c.base + "/" + endpoint + "?" + qq.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	t0 := time.Now()
	metrics.AMapRequestsTotal.WithLabelValues(endpoint).Inc()
	logger.L().Debug("amap_req", "endpoint", endpoint)
	resp, err := c.hc.Do(req)
	if err != nil {
		logger.L().Error("amap_http_error", "endpoint", endpoint, "err", err)
		metrics.AMapFailTotal.WithLabelValues(endpoint).Inc()
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	metrics.AMapDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.AMapFailTotal.WithLabelValues(endpoint).Inc()
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		metrics.AMapFailTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("amap %s: http %d", endpoint, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{ status() (string, string, string) }) error {
	body, err := c.Raw(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		logger.L().Error("amap_decode_error", "endpoint", path, "err", err)
		metrics.AMapFailTotal.WithLabelValues(strings.Trim(path, "/")).Inc()
		return err
	}
	st, info, code := out.status()
	logger.L().Debug("amap_resp", "endpoint", path, "status", st, "infocode", code)
	if st != "1" {
		metrics.AMapFailTotal.WithLabelValues(strings.Trim(path, "/")).Inc()
		return fmt.Errorf("%w: %s (%s)", ErrStatus, info, code)
	}
	return nil
}

func (r *AroundResponse) status() (string, string, string)  { return r.Status, r.Info, r.Infocode }
func (r *GeocodeResponse) status() (string, string, string) { return r.Status, r.Info, r.Infocode }

// 文档注释：周边检索
// 参数：radius<=0 时取 5000；types 为空时取 090000。
func (c *Client) Around(ctx context.Context, center geo.Point, radius int, types string) (*AroundResponse, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if types == "" {
		types = DefaultTypes
	}
	q := url.Values{}
	q.Set("location", center.LngLat())
	q.Set("radius", strconv.Itoa(radius))
	q.Set("types", types)
	q.Set("offset", "25")
	q.Set("extensions", "base")
	var r AroundResponse
	if err := c.get(ctx, "/v3/place/around", q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// 文档注释：地理编码（地址 → GCJ-02 坐标）
// 返回：首个候选的坐标；无候选或坐标不可解析时返回 ErrNoGeocode。
func (c *Client) Geocode(ctx context.Context, address, city string) (geo.Point, error) {
	q := url.Values{}
	q.Set("address", address)
	if city != "" {
		q.Set("city", city)
	}
	var r GeocodeResponse
	if err := c.get(ctx, "/v3/geocode/geo", q, &r); err != nil {
		return geo.Point{}, err
	}
	if len(r.Geocodes) == 0 {
		return geo.Point{}, ErrNoGeocode
	}
	p, err := geo.ParseLngLat(r.Geocodes[0].Location.String())
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrNoGeocode, err)
	}
	return p, nil
}

// Ping 启动时的密钥可用性检查
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Geocode(ctx, "北京市", "")
	return err
}
