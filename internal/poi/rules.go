package poi

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// 文档注释：规则文件结构（YAML）
// 背景：允许运维在不发版的情况下调整关键词与顺序；未出现的段落沿用内置默认值。
type ruleFile struct {
	Rules []struct {
		Name    string `yaml:"name"`
		Field   Field  `yaml:"field"`
		Pattern string `yaml:"pattern"`
		Tier    Tier   `yaml:"tier"`
	} `yaml:"rules"`
	IconOverrides []struct {
		Field   Field  `yaml:"field"`
		Pattern string `yaml:"pattern"`
		Icon    Icon   `yaml:"icon"`
	} `yaml:"icon_overrides"`
	Levels    []string      `yaml:"levels"`
	Icons     map[Tier]Icon `yaml:"icons"`
	TierOrder map[Tier]int  `yaml:"tier_order"`
}

// LoadClassifier 读取规则文件构造分类器
func LoadClassifier(path string) (*Classifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseClassifier(b)
}

// ParseClassifier 解析 YAML 规则；正则非法或分层未知时返回错误
func ParseClassifier(b []byte) (*Classifier, error) {
	var f ruleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	c := NewClassifier()
	if len(f.Rules) > 0 {
		c.rules = make([]Rule, 0, len(f.Rules))
		for i, r := range f.Rules {
			if !r.Tier.Valid() {
				return nil, fmt.Errorf("rule %d (%s): unknown tier %q", i, r.Name, r.Tier)
			}
			re, err := compileField(r.Field, r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
			}
			c.rules = append(c.rules, Rule{Name: r.Name, Field: fieldOrAny(r.Field), Pattern: re, Tier: r.Tier})
		}
	}
	if len(f.IconOverrides) > 0 {
		c.overrides = make([]IconOverride, 0, len(f.IconOverrides))
		for i, o := range f.IconOverrides {
			re, err := compileField(o.Field, o.Pattern)
			if err != nil {
				return nil, fmt.Errorf("icon override %d: %w", i, err)
			}
			c.overrides = append(c.overrides, IconOverride{Field: fieldOrAny(o.Field), Pattern: re, Icon: o.Icon})
		}
	}
	if len(f.Levels) > 0 {
		c.levels = f.Levels
	}
	if len(f.Icons) > 0 {
		icons := make(map[Tier]Icon, len(DefaultIcons))
		for t, ic := range DefaultIcons {
			icons[t] = ic
		}
		for t, ic := range f.Icons {
			icons[t] = ic
		}
		c.icons = icons
	}
	if len(f.TierOrder) > 0 {
		c.order = f.TierOrder
	}
	return c, nil
}

func compileField(f Field, pattern string) (*regexp.Regexp, error) {
	switch f {
	case "", FieldName, FieldType, FieldAny:
	default:
		return nil, fmt.Errorf("unknown field %q", f)
	}
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile(pattern)
}

func fieldOrAny(f Field) Field {
	if f == "" {
		return FieldAny
	}
	return f
}
