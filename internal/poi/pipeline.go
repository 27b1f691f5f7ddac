package poi

import (
	"hospital-api/internal/geo"
)

// Pipeline 从规范化记录到展示列表的完整处理链
type Pipeline struct {
	Classifier *Classifier
}

// NewPipeline 分类器为空时使用内置规则
func NewPipeline(c *Classifier) *Pipeline {
	if c == nil {
		c = NewClassifier()
	}
	return &Pipeline{Classifier: c}
}

// 文档注释：执行流水线
// 顺序：id 去重 → 排除 → 重复合并 → 补距离 → 分类 → 准入 → 排序。
// 约束：不修改入参切片；center 无效时不补距离。
func (p *Pipeline) Run(center geo.Point, hs []Hospital) []Hospital {
	list := UniqueIDs(hs)
	list = ExcludeAll(list)
	list = Dedup(list)
	for i := range list {
		h := &list[i]
		if h.DistanceKm == 0 && center.Valid() {
			h.DistanceKm = geo.DistanceMeters(center.Lat, center.Lng, h.Latitude, h.Longitude) / 1000
		}
		p.Classifier.Classify(h)
	}
	list = AdmitAll(list)
	return Rank(list)
}

// IngestPrimary 主源记录批量接入，坐标不可用的记录被丢弃
func IngestPrimary(raws []RawPrimary) []Hospital {
	out := make([]Hospital, 0, len(raws))
	for i, r := range raws {
		if h, ok := FromPrimary(r, i); ok {
			out = append(out, h)
		}
	}
	return out
}

// IngestFallback 兜底源记录批量接入
func IngestFallback(raws []RawFallback) []Hospital {
	out := make([]Hospital, 0, len(raws))
	for i, r := range raws {
		if h, ok := FromFallback(r, i); ok {
			out = append(out, h)
		}
	}
	return out
}
