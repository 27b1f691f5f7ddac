// 包 poi：医疗 POI 的规范化模型与处理流水线（接入 → 排除 → 去重 → 分类 → 准入 → 排序）
package poi

// Tier 展示分层
type Tier string

const (
	TierGeneral      Tier = "General"
	TierSpecialty    Tier = "Specialty"
	TierClinic       Tier = "Clinic"
	TierDental       Tier = "Dental"
	TierUnclassified Tier = "Unclassified"
)

// Valid 是否为已知分层；空值表示尚未分类
func (t Tier) Valid() bool {
	switch t {
	case TierGeneral, TierSpecialty, TierClinic, TierDental, TierUnclassified:
		return true
	}
	return false
}

// Source 记录来源标记，仅在接入边界赋值
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// TagOptOut 主动退出展示的机构标签
const TagOptOut = "OptOut"

const (
	// DefaultDisplayOrder 缺省优先级
	DefaultDisplayOrder = 99
	// DefaultDistanceKm 缺省距离
	DefaultDistanceKm = 999.0
)

// 文档注释：规范化医院记录
// 背景：两类上游返回结构差异较大，在接入层一次性归一为该结构，下游各阶段不再区分来源。
// 约束：DisplayOrder 为 0 表示缺省；DistanceKm 为 0 表示未知；Category 非空时必为已知分层。
type Hospital struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	TypeText         string   `json:"typeText"`
	TypeCode         string   `json:"typeCode,omitempty"`
	ChildType        string   `json:"childType,omitempty"`
	Category         Tier     `json:"category"`
	SourceCategory   string   `json:"sourceCategory,omitempty"`
	Level            string   `json:"level,omitempty"`
	IconKind         string   `json:"iconKind"`
	IconSize         int      `json:"iconSize"`
	DisplayOrder     int      `json:"displayOrder"`
	DistanceKm       float64  `json:"distanceKm"`
	Tags             []string `json:"tags,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Website          string   `json:"website,omitempty"`
	Intro            string   `json:"intro,omitempty"`
	IsFallbackSample bool     `json:"isFallbackSample"`
	Source           Source   `json:"source"`
}

// HasTag 标签是否存在
func (h *Hospital) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Marker 地图渲染层使用的点位
type Marker struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IconKind  string  `json:"iconKind"`
	IconSize  int     `json:"iconSize"`
	Title     string  `json:"title"`
}

// Markers 将列表投影为地图点位，顺序与列表一致
func Markers(hs []Hospital) []Marker {
	out := make([]Marker, 0, len(hs))
	for _, h := range hs {
		out = append(out, Marker{
			ID:        h.ID,
			Latitude:  h.Latitude,
			Longitude: h.Longitude,
			IconKind:  h.IconKind,
			IconSize:  h.IconSize,
			Title:     h.Name,
		})
	}
	return out
}
