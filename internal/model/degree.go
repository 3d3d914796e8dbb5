package model

import (
	"strconv"
	"strings"
)

// DegreeLevel 学位层级（固定三值枚举）
type DegreeLevel string

const (
	DegreeDoctoral DegreeLevel = "Doctoral"
	DegreeMaster   DegreeLevel = "Master"
	DegreeBachelor DegreeLevel = "Bachelor"
)

// DegreeLevels 选择器展示顺序
var DegreeLevels = []DegreeLevel{DegreeDoctoral, DegreeMaster, DegreeBachelor}

// awardLevelOrdinals IPEDS award level 代码 → 学位层级
// 5=学士，7=硕士，9/17/18/19=博士（旧版 9，新版拆分为研究型/专业型/其他）
var awardLevelOrdinals = map[int]DegreeLevel{
	5:  DegreeBachelor,
	7:  DegreeMaster,
	9:  DegreeDoctoral,
	17: DegreeDoctoral,
	18: DegreeDoctoral,
	19: DegreeDoctoral,
}

// ParseDegreeLevel 将标签或序数代码映射为学位层级。
// 标签按前缀大小写不敏感匹配（"Bachelor's degree"、"Masters"、"Doctor's degree - research" 等）。
// 无法识别时返回 (DegreeBachelor, false)：调用方据此决定是否沿用学士兜底。
func ParseDegreeLevel(raw string) (DegreeLevel, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DegreeBachelor, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		if lvl, ok := awardLevelOrdinals[n]; ok {
			return lvl, true
		}
		return DegreeBachelor, false
	}
	// 部分导出把序数存成 "5.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		if lvl, ok := awardLevelOrdinals[int(f)]; ok {
			return lvl, true
		}
		return DegreeBachelor, false
	}

	switch {
	case strings.HasPrefix(s, "doct"):
		return DegreeDoctoral, true
	case strings.HasPrefix(s, "master"):
		return DegreeMaster, true
	case strings.HasPrefix(s, "bachelor"):
		return DegreeBachelor, true
	}
	return DegreeBachelor, false
}

// Valid 是否为三值枚举之一
func (d DegreeLevel) Valid() bool {
	switch d {
	case DegreeDoctoral, DegreeMaster, DegreeBachelor:
		return true
	}
	return false
}

// String 实现 fmt.Stringer
func (d DegreeLevel) String() string { return string(d) }
