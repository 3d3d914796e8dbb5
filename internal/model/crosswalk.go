package model

// CrosswalkRecord 专业 → 职业映射（多对多）— 对应 program_occupation_crosswalk
type CrosswalkRecord struct {
	CIPCode string `gorm:"column:cip_code;type:varchar(16);primaryKey" json:"cip_code"`
	SOCCode string `gorm:"column:soc_code;type:varchar(16);primaryKey" json:"soc_code"`
}

// TableName 指定表名
func (CrosswalkRecord) TableName() string { return "program_occupation_crosswalk" }
