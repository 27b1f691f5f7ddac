package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/poi"
)

// 文档注释：合并 POI 服务（主源）
// 背景：上游预先合并多家地图数据并计算分类、图标、优先级；请求形如 ?location=lng,lat&radius=5000。
// 约束：非 2xx、解码失败均视为不可用；isSample/sampleReason 原样透传。
type MergedSource struct {
	endpoint string
	hc       *http.Client
}

func NewMergedSource(endpoint string, hc *http.Client) *MergedSource {
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	return &MergedSource{endpoint: endpoint, hc: hc}
}

func (s *MergedSource) Name() string { return "merged" }

func (s *MergedSource) Fetch(ctx context.Context, center geo.Point, radiusM int) (Result, error) {
	q := url.Values{}
	q.Set("location", center.LngLat())
	q.Set("radius", strconv.Itoa(radiusM))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.hc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: merged: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{}, fmt.Errorf("%w: merged: http %d", ErrProviderUnavailable, resp.StatusCode)
	}
	var body poi.PrimaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("%w: merged decode: %v", ErrProviderUnavailable, err)
	}
	hs := poi.IngestPrimary(body.POIs)
	logger.L().Debug("merged_resp", "raw", len(body.POIs), "usable", len(hs), "sample", bool(body.IsSample))
	if len(hs) == 0 {
		return Result{}, ErrEmptyResult
	}
	return Result{Hospitals: hs, IsSample: bool(body.IsSample), SampleReason: body.SampleReason.String()}, nil
}

// Heartbeat 以 HEAD 探测上游可达性，5xx 视为不健康
func (s *MergedSource) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("merged: http %d", resp.StatusCode)
	}
	return nil
}
