package poi_test

import (
	"fmt"
	"sort"
	"testing"

	"hospital-api/internal/poi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"人民医院":         "人民",
		"人民医院分院":       "人民",
		"人民医院（东院区）":    "人民",
		"人民医院(西院)":     "人民",
		"协和医院 门诊部":     "协和",
		"ＡＢＣ Clinic 2号楼": "abcclinic2号",
	}
	for in, want := range tests {
		assert.Equal(t, want, poi.NormalizeName(in), "input %q", in)
	}
}

func TestDedupMergesBranchWithinHundredMeters(t *testing.T) {
	hs := []poi.Hospital{
		{ID: "a", Name: "人民医院", TypeCode: "090101", Latitude: 39.9, Longitude: 116.4, Phone: "first"},
		{ID: "b", Name: "人民医院分院", TypeCode: "090102", Latitude: 39.90072, Longitude: 116.4, Phone: "second"},
	}
	out := poi.Dedup(hs)
	require.Len(t, out, 1)
	assert.Equal(t, hs[0], out[0])
}

func TestDedupKeepsDistinct(t *testing.T) {
	hs := []poi.Hospital{
		{ID: "a", Name: "人民医院", TypeCode: "090101", Latitude: 39.9, Longitude: 116.4},
		{ID: "b", Name: "人民医院", TypeCode: "090101", Latitude: 39.902, Longitude: 116.4},
		{ID: "c", Name: "人民医院", TypeCode: "090201", Latitude: 39.9, Longitude: 116.4},
		{ID: "d", Name: "友谊医院", TypeCode: "090101", Latitude: 39.9, Longitude: 116.4},
	}
	assert.Len(t, poi.Dedup(hs), 4)
}

func sampleForDedup() []poi.Hospital {
	names := []string{"人民医院", "人民医院分院", "协和医院", "协和医院（东院）", "社区卫生服务中心"}
	codes := []string{"090101", "090102", "090200", ""}
	var hs []poi.Hospital
	for i := 0; i < 60; i++ {
		hs = append(hs, poi.Hospital{
			ID:        fmt.Sprint(i),
			Name:      names[i%len(names)],
			TypeCode:  codes[(i/3)%len(codes)],
			Latitude:  39.9 + float64(i%7)*0.0004,
			Longitude: 116.4 + float64(i%4)*0.0005,
		})
	}
	return hs
}

func TestDedupIdempotent(t *testing.T) {
	once := poi.Dedup(sampleForDedup())
	twice := poi.Dedup(once)
	assert.Equal(t, once, twice)
}

func TestGroupsPartition(t *testing.T) {
	hs := sampleForDedup()
	groups := poi.Groups(hs)
	var all []int
	prevFirst := -1
	for _, g := range groups {
		require.NotEmpty(t, g)
		assert.Greater(t, g[0], prevFirst, "groups follow first-occurrence order")
		prevFirst = g[0]
		all = append(all, g...)
	}
	sort.Ints(all)
	want := make([]int, len(hs))
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, all)
}
