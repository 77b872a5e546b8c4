package model

// Department 院系表 — 对应 departments
type Department struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	Code string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(100);not null"            json:"name"`
	Timestamps
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
