package dataset

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Marky00100/program-gap/internal/model"
)

// DefaultAllRegionsLabel 未配置时使用的「全部地区」标签
const DefaultAllRegionsLabel = "All Regions"

// Options 装载期参数
type Options struct {
	GraduateYear    int    // 0 表示不过滤
	AllRegionsLabel string // 选中该标签时包含全部地区
}

// Tables 一次会话内的只读数据快照。
// 构造后不再修改，可被多个请求并发读取。
type Tables struct {
	ID       string
	Source   string
	LoadedAt time.Time

	Occupations []model.OccupationRecord
	Graduates   []model.GraduateRecord
	Crosswalk   []model.CrosswalkRecord
	Inverse     []model.CrosswalkRecord // SOC → CIP，缺省时由 Crosswalk 反转

	GraduateYear    int
	AllRegionsLabel string
}

// NewTables 组装快照。inverse 为空时由 crosswalk 反转得到。
func NewTables(source string, opts Options, occs []model.OccupationRecord, grads []model.GraduateRecord, xwalk, inverse []model.CrosswalkRecord) *Tables {
	label := opts.AllRegionsLabel
	if label == "" {
		label = DefaultAllRegionsLabel
	}
	if len(inverse) == 0 && len(xwalk) > 0 {
		inverse = invertCrosswalk(xwalk)
	}
	return &Tables{
		ID:              uuid.New().String(),
		Source:          source,
		LoadedAt:        time.Now(),
		Occupations:     occs,
		Graduates:       grads,
		Crosswalk:       xwalk,
		Inverse:         inverse,
		GraduateYear:    opts.GraduateYear,
		AllRegionsLabel: label,
	}
}

// RegionMatches 地区匹配规则：选中「全部地区」标签时恒为真，否则要求精确相等。
func (t *Tables) RegionMatches(rowRegion, selected string) bool {
	if selected == t.AllRegionsLabel {
		return true
	}
	return rowRegion == selected
}

// Programs 毕业生表中出现的专业代码（去重、升序）
func (t *Tables) Programs() []string {
	seen := make(map[string]struct{}, len(t.Graduates))
	for i := range t.Graduates {
		seen[t.Graduates[i].CIPCode] = struct{}{}
	}
	return sortedKeys(seen)
}

// Regions 选择器地区列表：「全部地区」在首位，其余为两张表中出现的地区（升序）
func (t *Tables) Regions() []string {
	seen := make(map[string]struct{})
	for i := range t.Graduates {
		seen[t.Graduates[i].Region] = struct{}{}
	}
	for i := range t.Occupations {
		seen[t.Occupations[i].Region] = struct{}{}
	}
	delete(seen, t.AllRegionsLabel)
	delete(seen, "")
	return append([]string{t.AllRegionsLabel}, sortedKeys(seen)...)
}

// ProgramsForOccupation 反向映射：职业代码 → 专业代码（去重、升序）
func (t *Tables) ProgramsForOccupation(socCode string) []string {
	seen := make(map[string]struct{})
	for i := range t.Inverse {
		if t.Inverse[i].SOCCode == socCode {
			seen[t.Inverse[i].CIPCode] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func invertCrosswalk(xwalk []model.CrosswalkRecord) []model.CrosswalkRecord {
	inv := make([]model.CrosswalkRecord, len(xwalk))
	copy(inv, xwalk)
	sort.SliceStable(inv, func(i, j int) bool {
		if inv[i].SOCCode != inv[j].SOCCode {
			return inv[i].SOCCode < inv[j].SOCCode
		}
		return inv[i].CIPCode < inv[j].CIPCode
	})
	return inv
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
