package model

// Student 学生档案表 — 对应 students
// ID 为仅在本库内使用的代理键，StudentID（NN-NNNNN）是与外部表格匹配的唯一自然键。
type Student struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                json:"id"`
	StudentID string `gorm:"type:varchar(8);not null;uniqueIndex"    json:"student_id"`
	Name      string `gorm:"type:varchar(150);not null;index"        json:"name"`
	DeptID    uint   `gorm:"column:dept_id;not null"                 json:"dept_id"`
	ProgramID *uint  `gorm:"column:program_id"                       json:"program_id,omitempty"`
	CourseID  *uint  `gorm:"column:course_id"                        json:"course_id,omitempty"`
	Semester  string `gorm:"type:varchar(20);not null;default:''"    json:"semester"`
	Grade     string `gorm:"type:varchar(20);not null;default:''"    json:"grade"`
	Timestamps

	// 关联
	// 专业、课程被删除时置空引用，与版本化迁移中的 ON DELETE SET NULL 一致
	Department *Department `gorm:"foreignKey:DeptID"                                json:"department,omitempty"`
	Program    *Program    `gorm:"foreignKey:ProgramID;constraint:OnDelete:SET NULL" json:"program,omitempty"`
	Course     *Course     `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL"  json:"course,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// StudentRow 学生与关联表连接后的扁平投影（推送同步与导出共用）
type StudentRow struct {
	ID          uint
	StudentID   string
	Name        string
	DeptCode    string
	DeptName    string
	ProgramName string
	CourseName  string
	Semester    string
	Grade       string
}
