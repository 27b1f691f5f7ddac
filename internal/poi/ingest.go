package poi

import (
	"math"
	"strconv"
	"strings"

	"hospital-api/internal/geo"
)

// 文档注释：主源记录 → 规范化记录
// 背景：主源优先给出独立经纬度字段，缺失时回退解析 "lng,lat"；分类、图标、优先级直接取上游算法字段。
// 参数：index 为记录在响应中的位置，用于缺失 id 时生成占位 id。
// 返回：ok=false 表示坐标不可用（MalformedRecord），调用方静默丢弃。
func FromPrimary(r RawPrimary, index int) (Hospital, bool) {
	var pt geo.Point
	if r.LocationLat.Set && r.LocationLng.Set {
		pt = geo.Point{Lat: r.LocationLat.Value, Lng: r.LocationLng.Value}
	} else {
		p, err := geo.ParseLngLat(r.Location.String())
		if err != nil {
			return Hospital{}, false
		}
		pt = p
	}
	if !pt.Valid() {
		return Hospital{}, false
	}
	h := Hospital{
		ID:               r.ID.String(),
		Name:             r.Name.String(),
		Address:          r.Address.String(),
		Latitude:         pt.Lat,
		Longitude:        pt.Lng,
		TypeText:         r.Type.String(),
		TypeCode:         r.TypeCode.String(),
		ChildType:        r.ChildType.String(),
		Tags:             []string(r.Tags),
		Phone:            r.Tel.String(),
		Website:          r.Website.String(),
		Intro:            r.Intro.String(),
		IsFallbackSample: bool(r.IsSample) || bool(r.Sample),
		Source:           SourcePrimary,
	}
	if h.ID == "" {
		h.ID = "pos-" + strconv.Itoa(index)
	}
	h.SourceCategory = firstNonEmpty(r.AlgoCategory.String(), r.Category.String())
	if isPlaceholder(h.SourceCategory) {
		h.SourceCategory = ""
	}
	h.Category = TierFromSource(h.SourceCategory)
	h.IconKind = firstNonEmpty(r.AlgoIconType.String(), r.IconKind.String())
	if h.IconKind != "" {
		h.IconSize = IconSizeFor(h.IconKind)
	}
	if r.AlgoDisplayOrder.Set {
		h.DisplayOrder = orderOf(r.AlgoDisplayOrder.Value)
	} else if r.DisplayOrder.Set {
		h.DisplayOrder = orderOf(r.DisplayOrder.Value)
	}
	h.DistanceKm = distanceKm(r.Distance)
	return h, true
}

// 文档注释：高德周边检索记录 → 规范化记录
// 约束：坐标只来自 location；分类与图标置空；标签缺省为类型文本本身，简介为“名称（类型）”。
func FromFallback(r RawFallback, index int) (Hospital, bool) {
	pt, err := geo.ParseLngLat(r.Location.String())
	if err != nil {
		return Hospital{}, false
	}
	h := Hospital{
		ID:        r.ID.String(),
		Name:      r.Name.String(),
		Address:   r.Address.String(),
		Latitude:  pt.Lat,
		Longitude: pt.Lng,
		TypeText:  r.Type.String(),
		TypeCode:  r.TypeCode.String(),
		Phone:     r.Tel.String(),
		Source:    SourceFallback,
	}
	if h.ID == "" {
		h.ID = "pos-" + strconv.Itoa(index)
	}
	if h.TypeText != "" {
		h.Tags = []string{h.TypeText}
		h.Intro = h.Name + "（" + h.TypeText + "）"
	}
	h.DistanceKm = distanceKm(r.Distance)
	return h, true
}

// 文档注释：上游分类文本 → 分层
// 背景：上游以中文或英文分层名下发；“无”“null”等占位值视为未提供，交由分类器推导。
// 约束：无法识别的文本同样返回空分层，原文保留在 SourceCategory 供展示。
func TierFromSource(s string) Tier {
	s = strings.TrimSpace(s)
	if isPlaceholder(s) {
		return ""
	}
	if t := Tier(s); t.Valid() {
		return t
	}
	for _, t := range []Tier{TierGeneral, TierSpecialty, TierClinic, TierDental, TierUnclassified} {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	switch {
	case strings.Contains(s, "口腔") || strings.Contains(s, "牙科"):
		return TierDental
	case strings.Contains(s, "综合") || strings.Contains(s, "三甲") || strings.Contains(s, "三级甲等"):
		return TierGeneral
	case strings.Contains(s, "专科"):
		return TierSpecialty
	case strings.Contains(s, "诊所") || strings.Contains(s, "社区") || strings.Contains(s, "卫生"):
		return TierClinic
	case strings.Contains(s, "其他") || strings.Contains(s, "未分类"):
		return TierUnclassified
	}
	return ""
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "无", "null", "undefined", "none":
		return true
	}
	return false
}

func distanceKm(d FlexFloat) float64 {
	if !d.Set || d.Value <= 0 || math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		return 0
	}
	return d.Value / 1000
}

func orderOf(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int(v)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
