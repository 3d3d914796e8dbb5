package service

import (
	"sort"

	"github.com/Marky00100/program-gap/internal/dataset"
)

// MatchingOccupations 返回映射表中与 cipCode 关联的职业代码集合（去重，无序）。
// 未出现在映射表中的专业返回空集合，调用方按「需求为 0」处理。
func MatchingOccupations(t *dataset.Tables, cipCode string) map[string]struct{} {
	socs := make(map[string]struct{})
	for i := range t.Crosswalk {
		if t.Crosswalk[i].CIPCode == cipCode {
			socs[t.Crosswalk[i].SOCCode] = struct{}{}
		}
	}
	return socs
}

// sortedCodes 仅用于展示：集合本身不承诺顺序
func sortedCodes(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
