package dto

// ── 院系 / 专业 / 课程 DTO ──

// DepartmentResponse 院系信息
type DepartmentResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ProgramResponse 专业信息
type ProgramResponse struct {
	ID       uint   `json:"id"`
	DeptID   uint   `json:"dept_id"`
	DeptCode string `json:"dept_code,omitempty"`
	Name     string `json:"name"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateProgramRequest 新增专业请求
type CreateProgramRequest struct {
	DeptID uint   `json:"dept_id" binding:"required,min=1"`
	Name   string `json:"name"    binding:"required,max=100"`
}

// CreateCourseRequest 新增课程请求
type CreateCourseRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required,max=100"`
}
