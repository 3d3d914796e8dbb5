package model

// GraduateRecord 毕业生人数行 — 对应 graduate_counts
type GraduateRecord struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"                        json:"-"`
	CIPCode     string      `gorm:"column:cip_code;type:varchar(16);not null;index" json:"cip_code"`
	RawDegree   string      `gorm:"type:varchar(64);not null"                       json:"raw_degree"`
	DegreeLevel DegreeLevel `gorm:"type:varchar(16);not null"                       json:"degree_level"`
	Graduates   int64       `gorm:"not null;default:0"                              json:"graduates"`
	Year        int         `gorm:"not null"                                        json:"year"`
	Region      string      `gorm:"type:varchar(100);not null"                      json:"region"`
}

// TableName 指定表名
func (GraduateRecord) TableName() string { return "graduate_counts" }
