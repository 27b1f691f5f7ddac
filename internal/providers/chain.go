// 包 providers：POI 数据源与按序降级的数据源链
package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/metrics"
	"hospital-api/internal/poi"
)

var (
	// ErrProviderUnavailable 传输、HTTP 或业务状态失败
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrEmptyResult 数据源正常响应但没有可用记录
	ErrEmptyResult = errors.New("provider returned no usable pois")
)

// Result 单个数据源的接入结果
type Result struct {
	Provider     string
	Hospitals    []poi.Hospital
	IsSample     bool
	SampleReason string
}

// 文档注释：数据源契约
// 约束：Fetch 返回已规范化的记录；失败时返回包装了 ErrProviderUnavailable 的错误；Heartbeat 用于健康检测。
type Source interface {
	Name() string
	Fetch(ctx context.Context, center geo.Point, radiusM int) (Result, error)
	Heartbeat(ctx context.Context) error
}

type status struct {
	healthy bool
	last    time.Time
	err     string
}

// Health 对外展示的数据源健康状态
type Health struct {
	Name    string    `json:"name"`
	Healthy bool      `json:"healthy"`
	Last    time.Time `json:"last"`
	Error   string    `json:"error,omitempty"`
}

// 文档注释：数据源链
// 背景：按注册顺序尝试各数据源，首个“处理后非空”的结果即返回；心跳失败的数据源暂时跳过。
// 约束：全部数据源不健康时仍按顺序全部尝试，保证请求总能到达终态。
type Chain struct {
	mu         sync.RWMutex
	sources    []Source
	st         map[string]status
	hbInterval time.Duration
	// Process 对每个数据源结果执行的处理（通常是 poi.Pipeline.Run），为空时不处理
	Process func(center geo.Point, hs []poi.Hospital) []poi.Hospital
}

func NewChain(hbInterval time.Duration, sources ...Source) *Chain {
	if hbInterval <= 0 {
		hbInterval = 60 * time.Second
	}
	c := &Chain{st: make(map[string]status), hbInterval: hbInterval}
	for _, s := range sources {
		c.Register(s)
	}
	return c
}

// Register 追加数据源，默认健康
func (c *Chain) Register(s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, s)
	c.st[s.Name()] = status{healthy: true, last: time.Now()}
	logger.L().Info("provider_registered", "name", s.Name(), "position", len(c.sources))
}

// Len 已注册数据源数量
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

func (c *Chain) ordered() []Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var healthy []Source
	for _, s := range c.sources {
		if c.st[s.Name()].healthy {
			healthy = append(healthy, s)
		}
	}
	if len(healthy) == 0 {
		return append([]Source(nil), c.sources...)
	}
	return healthy
}

// 文档注释：按序获取
// 返回：首个处理后非空的结果；全部失败返回 ErrProviderUnavailable，至少一个数据源正常但为空时返回 ErrEmptyResult。
func (c *Chain) Fetch(ctx context.Context, center geo.Point, radiusM int) (Result, error) {
	var lastErr error
	sawEmpty := false
	for _, s := range c.ordered() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		t0 := time.Now()
		r, err := s.Fetch(ctx, center, radiusM)
		metrics.ProviderDurationMs.WithLabelValues(s.Name()).Observe(float64(time.Since(t0).Milliseconds()))
		if err != nil {
			metrics.ProviderRequestsTotal.WithLabelValues(s.Name(), "fail").Inc()
			logger.L().Warn("provider_fallback", "name", s.Name(), "err", err)
			if errors.Is(err, ErrEmptyResult) {
				sawEmpty = true
			} else {
				lastErr = err
			}
			continue
		}
		r.Provider = s.Name()
		metrics.PipelineRecords.WithLabelValues("ingested").Observe(float64(len(r.Hospitals)))
		if c.Process != nil {
			r.Hospitals = c.Process(center, r.Hospitals)
		}
		if len(r.Hospitals) == 0 {
			metrics.ProviderRequestsTotal.WithLabelValues(s.Name(), "empty").Inc()
			logger.L().Info("provider_empty", "name", s.Name())
			sawEmpty = true
			continue
		}
		metrics.ProviderRequestsTotal.WithLabelValues(s.Name(), "ok").Inc()
		metrics.PipelineRecords.WithLabelValues("admitted").Observe(float64(len(r.Hospitals)))
		return r, nil
	}
	if sawEmpty {
		return Result{}, ErrEmptyResult
	}
	if lastErr == nil {
		return Result{}, fmt.Errorf("%w: no providers registered", ErrProviderUnavailable)
	}
	if errors.Is(lastErr, ErrProviderUnavailable) {
		return Result{}, lastErr
	}
	return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

// Start 启动心跳循环，ctx 取消时停止
func (c *Chain) Start(ctx context.Context) {
	t := time.NewTicker(c.hbInterval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Heartbeat(ctx)
			}
		}
	}()
}

// Heartbeat 立即执行一轮心跳；网络调用期间不持锁
func (c *Chain) Heartbeat(ctx context.Context) {
	c.mu.RLock()
	srcs := append([]Source(nil), c.sources...)
	c.mu.RUnlock()
	for _, s := range srcs {
		err := s.Heartbeat(ctx)
		st := status{healthy: err == nil, last: time.Now()}
		if err != nil {
			st.err = err.Error()
			logger.L().Debug("provider_heartbeat_fail", "name", s.Name(), "err", err)
			metrics.ProviderHeartbeatTotal.WithLabelValues(s.Name(), "fail").Inc()
		} else {
			metrics.ProviderHeartbeatTotal.WithLabelValues(s.Name(), "ok").Inc()
		}
		c.mu.Lock()
		c.st[s.Name()] = st
		c.mu.Unlock()
	}
}

// Status 各数据源健康状态，按注册顺序
func (c *Chain) Status() []Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Health, 0, len(c.sources))
	for _, s := range c.sources {
		st := c.st[s.Name()]
		out = append(out, Health{Name: s.Name(), Healthy: st.healthy, Last: st.last, Error: st.err})
	}
	return out
}
