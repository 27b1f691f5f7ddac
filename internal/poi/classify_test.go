package poi_test

import (
	"testing"

	"hospital-api/internal/poi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		typeText string
		tier     poi.Tier
		icon     string
		size     int
		order    int
		level    string
	}{
		{"朝阳社区卫生服务中心", "医疗保健服务;综合医院", poi.TierClinic, poi.IconRedCrossSmall, 18, 4, ""},
		{"北京协和医院", "医疗保健服务;综合医院;三级甲等医院", poi.TierGeneral, poi.IconRedCrossBold, 27, 1, "三级甲等"},
		{"北京儿童医院", "医疗保健服务;专科医院;儿童医院", poi.TierSpecialty, poi.IconRedCrossNormal, 24, 2, ""},
		{"北京口腔医院", "医疗保健服务;专科医院;口腔医院", poi.TierSpecialty, poi.IconTooth, 18, 2, ""},
		{"张三牙科", "医疗保健服务;医疗保健服务场所", poi.TierDental, poi.IconTooth, 18, 3, ""},
		{"李四诊所", "医疗保健服务;诊所;二级医院", poi.TierClinic, poi.IconRedCrossSmall, 18, 4, "二级"},
		{"某医疗器械店", "购物服务;医疗器械", poi.TierUnclassified, "", 0, 0, ""},
	}
	c := poi.NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := poi.Hospital{Name: tt.name, TypeText: tt.typeText}
			c.Classify(&h)
			assert.Equal(t, tt.tier, h.Category)
			assert.Equal(t, tt.icon, h.IconKind)
			assert.Equal(t, tt.size, h.IconSize)
			assert.Equal(t, tt.order, h.DisplayOrder)
			assert.Equal(t, tt.level, h.Level)
		})
	}
}

func TestClassifyKeepsSourceFields(t *testing.T) {
	c := poi.NewClassifier()
	h := poi.Hospital{
		Name:         "朝阳社区卫生服务中心",
		TypeText:     "综合医院",
		Category:     poi.TierGeneral,
		IconKind:     poi.IconRedCrossNormal,
		DisplayOrder: 7,
	}
	c.Classify(&h)
	assert.Equal(t, poi.TierGeneral, h.Category)
	assert.Equal(t, poi.IconRedCrossNormal, h.IconKind)
	assert.Equal(t, 24, h.IconSize)
	assert.Equal(t, 7, h.DisplayOrder)

	h2 := poi.Hospital{Name: "某医院", TypeText: "专科医院", Category: poi.TierSpecialty}
	c.Classify(&h2)
	assert.Equal(t, 2, h2.DisplayOrder, "tier order fills an absent display order")
}

func TestLevelPrefersHigherGrade(t *testing.T) {
	c := poi.NewClassifier()
	assert.Equal(t, "三级甲等", c.Level("三级甲等医院"))
	assert.Equal(t, "三甲", c.Level("三甲"))
	assert.Equal(t, "三级", c.Level("三级医院"))
	assert.Equal(t, "二级甲等", c.Level("二级甲等"))
	assert.Equal(t, "一级", c.Level("一级医院"))
	assert.Equal(t, "", c.Level("综合医院"))
}

func TestParseClassifier(t *testing.T) {
	src := []byte(`
rules:
  - name: vet
    field: name
    pattern: 动物
    tier: Unclassified
  - name: any_hospital
    pattern: 医院
    tier: General
tier_order:
  General: 5
icons:
  General:
    kind: star
    size: 30
`)
	c, err := poi.ParseClassifier(src)
	require.NoError(t, err)
	require.Len(t, c.Rules(), 2)
	assert.Equal(t, poi.FieldAny, c.Rules()[1].Field)

	h := poi.Hospital{Name: "海淀医院", TypeText: "综合医院"}
	c.Classify(&h)
	assert.Equal(t, poi.TierGeneral, h.Category)
	assert.Equal(t, "star", h.IconKind)
	assert.Equal(t, 30, h.IconSize)
	assert.Equal(t, 5, h.DisplayOrder)

	_, err = poi.ParseClassifier([]byte("rules:\n  - name: x\n    pattern: '('\n    tier: General\n"))
	assert.Error(t, err)
	_, err = poi.ParseClassifier([]byte("rules:\n  - name: x\n    pattern: a\n    tier: Gold\n"))
	assert.Error(t, err)
}
