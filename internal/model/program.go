package model

// Program 专业表 — 对应 programs，隶属于某个院系
type Program struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"   json:"id"`
	DeptID uint   `gorm:"column:dept_id;not null"    json:"dept_id"`
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	Timestamps

	Department *Department `gorm:"foreignKey:DeptID" json:"department,omitempty"`
}

// TableName 指定表名
func (Program) TableName() string { return "programs" }
