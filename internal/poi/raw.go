package poi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// 文档注释：宽松字符串
// 背景：高德在字段为空时返回 []，数字字段有时以数字有时以文本返回；统一容错为字符串。
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		parts := make([]string, 0, len(arr))
		for _, raw := range arr {
			var s FlexString
			if err := s.UnmarshalJSON(raw); err != nil {
				return err
			}
			if s != "" {
				parts = append(parts, string(s))
			}
		}
		*f = FlexString(strings.Join(parts, ";"))
	default:
		*f = FlexString(string(b))
	}
	return nil
}

func (f FlexString) String() string { return strings.TrimSpace(string(f)) }

// 文档注释：宽松数值，区分“缺省”与“0”
// 约束：空串、[]、null 与不可解析文本均视为缺省。
type FlexFloat struct {
	Value float64
	Set   bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s.String(), 64)
	if err != nil {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Set: true}
	return nil
}

// FlexStrings 接受字符串数组或以分号/逗号分隔的文本
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var arr []FlexString
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		out := make([]string, 0, len(arr))
		for _, s := range arr {
			if v := s.String(); v != "" {
				out = append(out, v)
			}
		}
		*f = out
		return nil
	}
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = splitList(s.String())
	return nil
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == '，' })
	out := fields[:0]
	for _, v := range fields {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FlexBool 接受 true/false、"true"/"1" 等写法
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(s.String()) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// 文档注释：合并数据源（主源）单条记录
// 背景：主源由上游服务预先聚合并计算分类字段；新旧两套字段名并存，接入时按“算法字段优先”取值。
type RawPrimary struct {
	ID               FlexString  `json:"id"`
	Name             FlexString  `json:"name"`
	Address          FlexString  `json:"address"`
	LocationLat      FlexFloat   `json:"location_lat"`
	LocationLng      FlexFloat   `json:"location_lng"`
	Location         FlexString  `json:"location"`
	Type             FlexString  `json:"type"`
	TypeCode         FlexString  `json:"typecode"`
	ChildType        FlexString  `json:"childtype"`
	AlgoCategory     FlexString  `json:"algo_hospital_category"`
	Category         FlexString  `json:"category"`
	AlgoIconType     FlexString  `json:"algo_icon_type"`
	IconKind         FlexString  `json:"iconKind"`
	AlgoDisplayOrder FlexFloat   `json:"algo_display_order"`
	DisplayOrder     FlexFloat   `json:"displayOrder"`
	Tel              FlexString  `json:"tel"`
	Website          FlexString  `json:"website"`
	Tags             FlexStrings `json:"tags"`
	Intro            FlexString  `json:"intro"`
	Distance         FlexFloat   `json:"distance"`
	IsSample         FlexBool    `json:"isSample"`
	Sample           FlexBool    `json:"_sample"`
}

// PrimaryResponse 主源响应
type PrimaryResponse struct {
	POIs         []RawPrimary `json:"pois"`
	IsSample     FlexBool     `json:"isSample"`
	SampleReason FlexString   `json:"sampleReason"`
}

// 文档注释：高德周边检索（兜底源）单条记录
// 约束：坐标仅来自 location 文本；分类与图标留给分类器计算。
type RawFallback struct {
	ID       FlexString `json:"id"`
	Name     FlexString `json:"name"`
	Address  FlexString `json:"address"`
	Location FlexString `json:"location"`
	Type     FlexString `json:"type"`
	TypeCode FlexString `json:"typecode"`
	Tel      FlexString `json:"tel"`
	Distance FlexFloat  `json:"distance"`
}
