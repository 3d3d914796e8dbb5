package model

// OccupationRecord 劳动力市场指标（LMI）行 — 对应 lmi_occupations
// (SOCCode, Region) 预期唯一，但不做约束：重复行在汇总时直接累加。
type OccupationRecord struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement"                        json:"-"`
	SOCCode        string  `gorm:"column:soc_code;type:varchar(16);not null;index" json:"soc_code"`
	Title          string  `gorm:"type:varchar(255)"                               json:"title,omitempty"`
	Region         string  `gorm:"type:varchar(100);not null"                      json:"region"`
	OpeningsGrowth float64 `gorm:"not null;default:0"                              json:"annual_openings_growth"`
	PctDoctoral    float64 `gorm:"not null;default:0"                              json:"pct_doctoral"`
	PctMaster      float64 `gorm:"not null;default:0"                              json:"pct_master"`
	PctBachelor    float64 `gorm:"not null;default:0"                              json:"pct_bachelor"`
}

// TableName 指定表名
func (OccupationRecord) TableName() string { return "lmi_occupations" }

// AttainmentPct 按学位层级选择唯一的权重列（0–100）。
// 三列互斥，不做混合；未知层级落到学士列。
func (o *OccupationRecord) AttainmentPct(level DegreeLevel) float64 {
	switch level {
	case DegreeDoctoral:
		return o.PctDoctoral
	case DegreeMaster:
		return o.PctMaster
	default:
		return o.PctBachelor
	}
}
