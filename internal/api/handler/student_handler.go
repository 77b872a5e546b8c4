package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-records/internal/dto"
	"student-records/internal/service"
	pkgerrors "student-records/pkg/errors"
	"student-records/pkg/response"
)

// StudentHandler 学生档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// List 学生列表
// GET /api/v1/students?dept=CS&program=1&course=2
func (h *StudentHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.studentSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, student)
}

// Create 新增学生
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	if !result.SheetSynced {
		response.CreatedWithMessage(c, result.Warning, result)
		return
	}
	response.Created(c, result)
}

// Update 编辑学生
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	writeMutation(c, result)
}

// Delete 删除学生（记录不存在时同样返回成功）
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.studentSvc.Delete(c.Request.Context(), caller, id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	writeMutation(c, result)
}

func writeMutation(c *gin.Context, result *dto.StudentMutationResponse) {
	if !result.SheetSynced {
		response.OKWithMessage(c, result.Warning, result)
		return
	}
	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12001, validationErr.Message, validationErr.Field)
	case pkgerrors.IsNotFound(err):
		response.NotFound(c, 12002, "学生不存在")
	case errors.Is(err, service.ErrStudentIDExists):
		response.Error(c, http.StatusConflict, 12003, "学号已存在")
	default:
		response.InternalError(c)
	}
}
