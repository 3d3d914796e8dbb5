package service

import (
	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/model"
)

// GapResult 供需缺口计算结果
type GapResult struct {
	Ratio          float64
	TotalGraduates int64
	AdjustedDemand float64
}

// DemandContribution 单行 LMI 对调整后需求的贡献
type DemandContribution struct {
	SOCCode        string
	Region         string
	OpeningsGrowth float64
	AttainmentPct  float64
	Demand         float64
}

// GapBreakdown 计算明细
type GapBreakdown struct {
	GapResult
	DegreeLevel   model.DegreeLevel // 实际使用的学位层级（兜底后）
	Occupations   []string          // 匹配到的职业代码（升序，仅用于展示）
	Contributions []DemandContribution
}

// ComputeGap 计算指定 (专业, 学位层级, 地区) 的供需比。
// 纯函数：相同输入与相同快照得到相同输出。
func ComputeGap(t *dataset.Tables, cipCode string, level model.DegreeLevel, region string) GapResult {
	return ExplainGap(t, cipCode, level, region).GapResult
}

// ExplainGap 与 ComputeGap 同一计算路径，额外返回匹配职业与逐行贡献。
//
//  1. 毕业生：专业、学位层级、地区同时匹配的行人数求和（无匹配为 0）
//  2. 职业：映射表中该专业对应的职业集合
//  3. LMI：职业在集合内且地区匹配的行
//  4. 按学位层级选择唯一的占比列（三列互斥）
//  5. 需求 = Σ openings_growth × pct / 100；负增长行会抵消正增长行
//  6. 需求非 0 时 ratio = 毕业生 / 需求，否则恰为 0
//
// 学位层级不在枚举内时沿用学士列（兼容旧行为），同时按学士过滤毕业生。
func ExplainGap(t *dataset.Tables, cipCode string, level model.DegreeLevel, region string) GapBreakdown {
	if !level.Valid() {
		level = model.DegreeBachelor
	}

	var totalGraduates int64
	for i := range t.Graduates {
		g := &t.Graduates[i]
		if g.CIPCode == cipCode && g.DegreeLevel == level && t.RegionMatches(g.Region, region) {
			totalGraduates += g.Graduates
		}
	}

	socs := MatchingOccupations(t, cipCode)

	var (
		adjustedDemand float64
		contributions  []DemandContribution
	)
	if len(socs) > 0 {
		for i := range t.Occupations {
			o := &t.Occupations[i]
			if _, ok := socs[o.SOCCode]; !ok || !t.RegionMatches(o.Region, region) {
				continue
			}
			pct := o.AttainmentPct(level)
			demand := o.OpeningsGrowth * (pct / 100)
			adjustedDemand += demand
			contributions = append(contributions, DemandContribution{
				SOCCode:        o.SOCCode,
				Region:         o.Region,
				OpeningsGrowth: o.OpeningsGrowth,
				AttainmentPct:  pct,
				Demand:         demand,
			})
		}
	}

	ratio := 0.0
	if adjustedDemand != 0 {
		ratio = float64(totalGraduates) / adjustedDemand
	}

	return GapBreakdown{
		GapResult: GapResult{
			Ratio:          ratio,
			TotalGraduates: totalGraduates,
			AdjustedDemand: adjustedDemand,
		},
		DegreeLevel:   level,
		Occupations:   sortedCodes(socs),
		Contributions: contributions,
	}
}
