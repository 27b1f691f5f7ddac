package poi

import (
	"regexp"
	"strings"
)

// Field 规则匹配的文本字段
type Field string

const (
	FieldName Field = "name"
	FieldType Field = "type"
	FieldAny  Field = "any"
)

// Rule 分层规则：按表顺序匹配，首个命中者生效
type Rule struct {
	Name    string
	Field   Field
	Pattern *regexp.Regexp
	Tier    Tier
}

// IconOverride 图标覆盖：命中时替换分层默认图标，不改变分层
type IconOverride struct {
	Field   Field
	Pattern *regexp.Regexp
	Icon    Icon
}

// Icon 图标标识与点位尺寸
type Icon struct {
	Kind string `json:"kind" yaml:"kind"`
	Size int    `json:"size" yaml:"size"`
}

func (r Rule) match(h *Hospital) bool { return matchField(r.Field, r.Pattern, h) }

func (o IconOverride) match(h *Hospital) bool { return matchField(o.Field, o.Pattern, h) }

func matchField(f Field, re *regexp.Regexp, h *Hospital) bool {
	switch f {
	case FieldName:
		return re.MatchString(h.Name)
	case FieldType:
		return re.MatchString(h.TypeText)
	default:
		return re.MatchString(h.Name) || re.MatchString(h.TypeText)
	}
}

// DefaultRules 内置分层规则表
// 名称中的社区类标记排在最前，使其压过类型文本中的“综合医院”等信号。
func DefaultRules() []Rule {
	return []Rule{
		{Name: "community_name", Field: FieldName, Pattern: regexp.MustCompile(`社区|健康中心|保健中心|卫生`), Tier: TierClinic},
		{Name: "general", Field: FieldAny, Pattern: regexp.MustCompile(`三甲|三级甲等|综合|协和`), Tier: TierGeneral},
		{Name: "specialty", Field: FieldType, Pattern: regexp.MustCompile(`专科医院`), Tier: TierSpecialty},
		{Name: "clinic_type", Field: FieldType, Pattern: regexp.MustCompile(`诊所|社区卫生服务中心|卫生服务中心`), Tier: TierClinic},
		{Name: "dental", Field: FieldAny, Pattern: regexp.MustCompile(`口腔|牙科`), Tier: TierDental},
	}
}

// DefaultIconOverrides 口腔/牙科统一使用牙齿图标
func DefaultIconOverrides() []IconOverride {
	return []IconOverride{
		{Field: FieldAny, Pattern: regexp.MustCompile(`口腔|牙科`), Icon: Icon{Kind: IconTooth, Size: 18}},
	}
}

// DefaultLevels 等级标记，按等级由高到低排列
var DefaultLevels = []string{
	"三级甲等", "三甲", "三级乙等", "三级", "二级甲等", "二级乙等", "二级", "一级甲等", "一级乙等", "一级",
}

const (
	IconRedCrossBold   = "redCrossBold"
	IconRedCrossNormal = "redCrossNormal"
	IconRedCrossSmall  = "redCrossSmall"
	IconTooth          = "tooth"
)

// DefaultIcons 分层 → 图标
var DefaultIcons = map[Tier]Icon{
	TierGeneral:   {Kind: IconRedCrossBold, Size: 27},
	TierSpecialty: {Kind: IconRedCrossNormal, Size: 24},
	TierClinic:    {Kind: IconRedCrossSmall, Size: 18},
	TierDental:    {Kind: IconTooth, Size: 18},
}

// DefaultTierOrder 上游未下发优先级时按分层补齐
var DefaultTierOrder = map[Tier]int{
	TierGeneral:   1,
	TierSpecialty: 2,
	TierDental:    3,
	TierClinic:    4,
}

// IconSizeFor 已知图标的点位尺寸，未知图标取中等尺寸
func IconSizeFor(kind string) int {
	for _, ic := range DefaultIcons {
		if strings.EqualFold(ic.Kind, kind) {
			return ic.Size
		}
	}
	return 24
}

// 文档注释：分类器
// 背景：分层、等级、图标、兜底优先级集中在一张数据驱动的规则表中，单条记录只评估一次。
// 约束：上游已给出的分层、图标、优先级一律保留；只补齐缺失字段。
type Classifier struct {
	rules     []Rule
	overrides []IconOverride
	levels    []string
	icons     map[Tier]Icon
	order     map[Tier]int
}

// NewClassifier 使用内置规则表构造分类器
func NewClassifier() *Classifier {
	return &Classifier{
		rules:     DefaultRules(),
		overrides: DefaultIconOverrides(),
		levels:    DefaultLevels,
		icons:     DefaultIcons,
		order:     DefaultTierOrder,
	}
}

// Rules 当前规则表（只读副本）
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Derive 按规则表推导分层，返回命中的规则名；无命中时为 Unclassified
func (c *Classifier) Derive(h *Hospital) (Tier, string) {
	for _, r := range c.rules {
		if r.match(h) {
			return r.Tier, r.Name
		}
	}
	return TierUnclassified, ""
}

// Level 在类型文本中查找等级标记，高等级优先
func (c *Classifier) Level(typeText string) string {
	for _, lv := range c.levels {
		if strings.Contains(typeText, lv) {
			return lv
		}
	}
	return ""
}

// Icon 分层默认图标叠加覆盖规则
func (c *Classifier) Icon(h *Hospital) Icon {
	for _, o := range c.overrides {
		if o.match(h) {
			return o.Icon
		}
	}
	return c.icons[h.Category]
}

// Classify 原地补齐分层、等级、图标与兜底优先级
func (c *Classifier) Classify(h *Hospital) {
	if h.Category == "" {
		h.Category, _ = c.Derive(h)
	}
	if h.Level == "" {
		h.Level = c.Level(h.TypeText)
	}
	if h.IconKind == "" {
		ic := c.Icon(h)
		h.IconKind, h.IconSize = ic.Kind, ic.Size
	} else if h.IconSize == 0 {
		h.IconSize = IconSizeFor(h.IconKind)
	}
	if h.DisplayOrder == 0 {
		if o, ok := c.order[h.Category]; ok {
			h.DisplayOrder = o
		}
	}
}
