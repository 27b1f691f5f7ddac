package providers

import (
	"context"
	"fmt"

	"hospital-api/internal/amap"
	"hospital-api/internal/geo"
	"hospital-api/internal/poi"
)

// 文档注释：高德周边检索（兜底源）
// 约束：需服务端密钥；分类与图标由分类器补齐。
type AMapSource struct {
	client *amap.Client
	types  string
}

func NewAMapSource(client *amap.Client, types string) *AMapSource {
	return &AMapSource{client: client, types: types}
}

func (s *AMapSource) Name() string { return "amap" }

func (s *AMapSource) Fetch(ctx context.Context, center geo.Point, radiusM int) (Result, error) {
	r, err := s.client.Around(ctx, center, radiusM, s.types)
	if err != nil {
		return Result{}, fmt.Errorf("%w: amap: %v", ErrProviderUnavailable, err)
	}
	hs := poi.IngestFallback(r.POIs)
	if len(hs) == 0 {
		return Result{}, ErrEmptyResult
	}
	return Result{Hospitals: hs}, nil
}

func (s *AMapSource) Heartbeat(ctx context.Context) error {
	if !s.client.HasKey() {
		return amap.ErrMissingKey
	}
	return s.client.Ping(ctx)
}
