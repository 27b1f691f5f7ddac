package poi

import (
	"regexp"
	"strings"
	"unicode"

	"hospital-api/internal/geo"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// MergeDistanceMeters 同名同类记录视为重复的最大间距
const MergeDistanceMeters = 100.0

// TypePrefixLen 类型编码比较的前缀长度
const TypePrefixLen = 5

// 机构后缀、分支与楼宇限定词以及括号内容
var boilerplate = regexp.MustCompile(`医院|分院|门诊部|住院楼|本部|分部|大楼|楼|栋|（.*?）|\(.*?\)`)

// 文档注释：名称归一化
// 背景：同一机构在上游常以“XX医院”“XX医院分院”“XX医院（东院区）”多次出现；去掉通用后缀与括号后比较。
// 约束：先做全角转半角，再去样板词与空白，最后大小写折叠。
func NormalizeName(name string) string {
	s := width.Fold.String(name)
	s = boilerplate.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return cases.Fold().String(s)
}

func typePrefix(code string) string {
	rs := []rune(code)
	if len(rs) > TypePrefixLen {
		rs = rs[:TypePrefixLen]
	}
	return string(rs)
}

// 文档注释：重复分组
// 背景：按输入顺序扫描，每个未归组记录开启新组，并吸收其后“名称归一化相同、类型前缀相同、间距小于 100 米”的记录。
// 返回：按首成员出现顺序排列的分组（元素为输入下标），互不相交且覆盖全部输入。
func Groups(hs []Hospital) [][]int {
	names := make([]string, len(hs))
	prefixes := make([]string, len(hs))
	for i := range hs {
		names[i] = NormalizeName(hs[i].Name)
		prefixes[i] = typePrefix(hs[i].TypeCode)
	}
	used := make([]bool, len(hs))
	var groups [][]int
	for i := range hs {
		if used[i] {
			continue
		}
		used[i] = true
		g := []int{i}
		for j := i + 1; j < len(hs); j++ {
			if used[j] || names[i] != names[j] || prefixes[i] != prefixes[j] {
				continue
			}
			if distance(&hs[i], &hs[j]) < MergeDistanceMeters {
				used[j] = true
				g = append(g, j)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Dedup 每组保留首个成员，不合并其余成员的字段
func Dedup(hs []Hospital) []Hospital {
	groups := Groups(hs)
	out := make([]Hospital, 0, len(groups))
	for _, g := range groups {
		out = append(out, hs[g[0]])
	}
	return out
}

func distance(a, b *Hospital) float64 {
	return geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
