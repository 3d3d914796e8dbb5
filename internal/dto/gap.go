package dto

// ── 缺口计算模块 DTO ──

// GapRequest 缺口计算请求（query 参数）
// degree 为空或不在枚举内时按学士计算；region 为空时视为「全部地区」
type GapRequest struct {
	CIPCode     string `form:"cip"    binding:"required,max=16"`
	DegreeLevel string `form:"degree" binding:"omitempty,max=64"`
	Region      string `form:"region" binding:"omitempty,max=100"`
}

// GapResponse 缺口计算结果
type GapResponse struct {
	CIPCode             string  `json:"cip_code"`
	DegreeLevel         string  `json:"degree_level"`
	DegreeLevelFallback bool    `json:"degree_level_fallback"`
	Region              string  `json:"region"`
	GraduateYear        int     `json:"graduate_year,omitempty"`
	Ratio               float64 `json:"ratio"`
	RatioDisplay        string  `json:"ratio_display"` // 两位小数
	TotalGraduates      int64   `json:"total_graduates"`
	AdjustedDemand      float64 `json:"adjusted_demand"`
	SnapshotID          string  `json:"snapshot_id"`
}

// DemandContributionResponse 单行 LMI 需求贡献
type DemandContributionResponse struct {
	SOCCode        string  `json:"soc_code"`
	Region         string  `json:"region"`
	OpeningsGrowth float64 `json:"annual_openings_growth"`
	AttainmentPct  float64 `json:"attainment_pct"`
	Demand         float64 `json:"demand"`
}

// GapDetailResponse 「查看详细计算」视图
type GapDetailResponse struct {
	GapResponse
	Occupations   []string                     `json:"occupations"`
	Contributions []DemandContributionResponse `json:"contributions"`
}

// OptionsResponse 选择器可选值
type OptionsResponse struct {
	Programs        []string `json:"programs"`
	DegreeLevels    []string `json:"degree_levels"`
	Regions         []string `json:"regions"`
	AllRegionsLabel string   `json:"all_regions_label"`
	GraduateYear    int      `json:"graduate_year,omitempty"`
}

// ProgramOccupationsResponse 专业 → 职业
type ProgramOccupationsResponse struct {
	CIPCode     string   `json:"cip_code"`
	Occupations []string `json:"occupations"`
}

// OccupationProgramsResponse 职业 → 专业（反向映射）
type OccupationProgramsResponse struct {
	SOCCode  string   `json:"soc_code"`
	Programs []string `json:"programs"`
}

// GapExportRequest 缺口报表导出参数
type GapExportRequest struct {
	DegreeLevel string `form:"degree" binding:"omitempty,max=64"`
	Region      string `form:"region" binding:"omitempty,max=100"`
}
