package dto

// ── 学生档案 DTO ──

// StudentRequest 新增 / 编辑学生请求。
// 字段格式（学号、姓名、院系等）由 StudentService 统一校验，这里不做 binding 约束。
type StudentRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	DeptID    uint   `json:"dept_id"`
	ProgramID *uint  `json:"program_id"`
	CourseID  *uint  `json:"course_id"`
	Semester  string `json:"semester"`
	Grade     string `json:"grade"`
}

// StudentListRequest 学生列表过滤参数，多个条件取交集
type StudentListRequest struct {
	Dept    string `form:"dept"    binding:"omitempty,max=20"` // 院系代码
	Program *uint  `form:"program" binding:"omitempty,min=1"`
	Course  *uint  `form:"course"  binding:"omitempty,min=1"`
}

// StudentResponse 学生信息
type StudentResponse struct {
	ID         uint                `json:"id"`
	StudentID  string              `json:"student_id"`
	Name       string              `json:"name"`
	Department *DepartmentResponse `json:"department,omitempty"`
	Program    *ProgramResponse    `json:"program,omitempty"`
	Course     *CourseResponse     `json:"course,omitempty"`
	Semester   string              `json:"semester"`
	Grade      string              `json:"grade"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

// StudentMutationResponse 增删改结果。
// 本地写入已提交；SheetSynced=false 时表格镜像可能已过期，Warning 给出提示。
type StudentMutationResponse struct {
	Student     *StudentResponse `json:"student,omitempty"`
	SheetSynced bool             `json:"sheet_synced"`
	Warning     string           `json:"warning,omitempty"`
}
