package poi_test

import (
	"strings"
	"testing"

	"hospital-api/internal/geo"
	"hospital-api/internal/poi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRun(t *testing.T) {
	center := geo.Point{Lat: 39.9336, Lng: 116.4402}
	in := []poi.Hospital{
		{ID: "1", Name: "东四社区卫生服务中心", TypeText: "医疗保健服务;综合医院", TypeCode: "090101", Latitude: 39.934, Longitude: 116.417, DistanceKm: 2.0},
		{ID: "2", Name: "北京协和医院", TypeText: "医疗保健服务;综合医院;三级甲等医院", TypeCode: "090101", Latitude: 39.912386, Longitude: 116.416357},
		{ID: "3", Name: "北京协和医院（东院）", TypeText: "医疗保健服务;综合医院", TypeCode: "090101", Latitude: 39.9124, Longitude: 116.4164},
		{ID: "4", Name: "美莱医疗美容", TypeText: "医疗保健服务;专科医院", Latitude: 39.93, Longitude: 116.44},
		{ID: "5", Name: "某医疗器械店", TypeText: "购物服务;医疗器械", Latitude: 39.93, Longitude: 116.44},
		{ID: "6", Name: "北京口腔医院", TypeText: "医疗保健服务;专科医院;口腔医院", TypeCode: "090202", Latitude: 39.92, Longitude: 116.43, DistanceKm: 1.5},
		{ID: "1", Name: "重复 id", TypeText: "诊所", Latitude: 39.93, Longitude: 116.44},
	}
	inCopy := append([]poi.Hospital(nil), in...)

	out := poi.NewPipeline(nil).Run(center, in)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"2", "6", "1"}, ids(out))
	assert.Equal(t, inCopy, in, "input slice is left untouched")

	general := out[0]
	assert.Equal(t, poi.TierGeneral, general.Category)
	assert.Equal(t, "三级甲等", general.Level)
	assert.InDelta(t, center.DistanceTo(geo.Point{Lat: 39.912386, Lng: 116.416357})/1000, general.DistanceKm, 1e-9)

	assert.Equal(t, poi.IconTooth, out[1].IconKind)
	assert.Equal(t, poi.TierClinic, out[2].Category)

	for _, h := range out {
		text := h.Name + h.TypeText + h.Address
		for _, kw := range poi.ExclusionKeywords {
			assert.False(t, strings.Contains(text, kw), "%s contains %s", h.Name, kw)
		}
	}
}

func TestMarkers(t *testing.T) {
	hs := []poi.Hospital{{ID: "a", Name: "甲", Latitude: 1, Longitude: 2, IconKind: poi.IconTooth, IconSize: 18}}
	m := poi.Markers(hs)
	require.Len(t, m, 1)
	assert.Equal(t, poi.Marker{ID: "a", Latitude: 1, Longitude: 2, IconKind: poi.IconTooth, IconSize: 18, Title: "甲"}, m[0])
}
