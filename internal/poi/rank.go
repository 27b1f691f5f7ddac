package poi

import "sort"

func rankOrder(h *Hospital) int {
	if h.DisplayOrder <= 0 {
		return DefaultDisplayOrder
	}
	return h.DisplayOrder
}

func rankDistance(h *Hospital) float64 {
	if h.DistanceKm <= 0 {
		return DefaultDistanceKm
	}
	return h.DistanceKm
}

// 文档注释：稳定排序
// 背景：先按上游优先级升序（缺省 99），再按距离升序（缺省 999）；两键都相同时保持输入顺序。
// 约束：原地排序并返回同一切片。
func Rank(hs []Hospital) []Hospital {
	sort.SliceStable(hs, func(i, j int) bool {
		oi, oj := rankOrder(&hs[i]), rankOrder(&hs[j])
		if oi != oj {
			return oi < oj
		}
		return rankDistance(&hs[i]) < rankDistance(&hs[j])
	})
	return hs
}
