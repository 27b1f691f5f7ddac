package poi

import "strings"

// ExclusionKeywords 非医疗机构关键词（医美、康复、零售药房等）
var ExclusionKeywords = []string{
	"美容", "医美", "整形", "美体", "美发", "美甲", "SPA", "瘦身", "塑形",
	"康复", "药店", "药房", "大药房", "连锁药店",
}

// CommunityNameKeywords 名称中的社区/基层机构标记
var CommunityNameKeywords = []string{"社区", "健康中心", "保健中心", "卫生"}

// AdmissionTypeKeywords 准入的机构类型
var AdmissionTypeKeywords = []string{"综合医院", "专科医院", "诊所", "社区卫生服务中心", "卫生服务中心"}

// 文档注释：排除判定
// 背景：名称、类型、地址拼接后命中任一非医疗关键词即排除；主动退出标签同样在此剔除。
// 约束：对所有来源一律执行。
func Excluded(h *Hospital) bool {
	if h.HasTag(TagOptOut) {
		return true
	}
	text := h.Name + h.TypeText + h.Address
	return containsAny(text, ExclusionKeywords)
}

// ExcludeAll 返回未被排除的记录，保持输入顺序
func ExcludeAll(hs []Hospital) []Hospital {
	out := make([]Hospital, 0, len(hs))
	for i := range hs {
		if !Excluded(&hs[i]) {
			out = append(out, hs[i])
		}
	}
	return out
}

// 文档注释：准入判定
// 背景：只在原始文本上判定，与分层结果无关；未命中的记录即便通过了排除阶段也不会展示。
func Admitted(h *Hospital) bool {
	return containsAny(h.Name, CommunityNameKeywords) || containsAny(h.TypeText, AdmissionTypeKeywords)
}

// AdmitAll 返回准入的记录，保持输入顺序
func AdmitAll(hs []Hospital) []Hospital {
	out := make([]Hospital, 0, len(hs))
	for i := range hs {
		if Admitted(&hs[i]) {
			out = append(out, hs[i])
		}
	}
	return out
}

// UniqueIDs 同一 id 仅保留首次出现的记录
func UniqueIDs(hs []Hospital) []Hospital {
	seen := make(map[string]struct{}, len(hs))
	out := make([]Hospital, 0, len(hs))
	for _, h := range hs {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}

func containsAny(s string, kws []string) bool {
	if s == "" {
		return false
	}
	for _, k := range kws {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
