// 包 warmup：按周期预热热点中心的邻近缓存，运行在服务进程内的后台协程
package warmup

import (
	"context"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/recommend"
)

// Recommender 预热入口（通常为 *recommend.Service）
type Recommender interface {
	Recommend(ctx context.Context, center geo.Point) recommend.Result
}

// 文档注释：缓存预热
// 背景：热点中心（如院区周边）首个访问者不必等待上游；预热请求与普通请求走同一条路径，命中缓存时不访问上游。
// 约束：中心为空或周期 <=0 时不启动；单次预热逐个中心串行执行，失败仅记录日志。
type Scheduler struct {
	r        Recommender
	centers  []geo.Point
	interval time.Duration
	timeout  time.Duration
}

func New(r Recommender, centers []geo.Point, interval time.Duration) *Scheduler {
	return &Scheduler{r: r, centers: centers, interval: interval, timeout: 15 * time.Second}
}

// RunOnce 预热所有中心，返回拿到非空列表的中心数
func (s *Scheduler) RunOnce(ctx context.Context) int {
	l := logger.L()
	warmed := 0
	for _, c := range s.centers {
		if ctx.Err() != nil {
			break
		}
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		res := s.r.Recommend(cctx, c)
		cancel()
		if len(res.Hospitals) == 0 {
			l.Warn("warmup_empty", "lat", c.Lat, "lng", c.Lng, "warning", res.Warning)
			continue
		}
		warmed++
		l.Debug("warmup_center_ok", "lat", c.Lat, "lng", c.Lng, "cache", res.Cache, "count", len(res.Hospitals))
	}
	return warmed
}

// Start 立即预热一次，之后每个周期预热一次，直到 ctx 取消
func (s *Scheduler) Start(ctx context.Context) {
	l := logger.L()
	if len(s.centers) == 0 || s.interval <= 0 {
		l.Info("warmup_disabled", "centers", len(s.centers), "interval", s.interval)
		return
	}
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			l.Info("warmup_start", "centers", len(s.centers))
			n := s.RunOnce(ctx)
			l.Info("warmup_done", "warmed", n, "next", time.Now().Add(s.interval))
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}
