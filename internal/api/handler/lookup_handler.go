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

// LookupHandler 院系 / 专业 / 课程字典 HTTP 处理器
type LookupHandler struct {
	lookupSvc service.LookupService
}

// NewLookupHandler 创建 LookupHandler
func NewLookupHandler(lookupSvc service.LookupService) *LookupHandler {
	return &LookupHandler{lookupSvc: lookupSvc}
}

// ListDepartments GET /api/v1/departments
func (h *LookupHandler) ListDepartments(c *gin.Context) {
	list, err := h.lookupSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// ListPrograms GET /api/v1/programs
func (h *LookupHandler) ListPrograms(c *gin.Context) {
	list, err := h.lookupSvc.ListPrograms(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// ListCourses GET /api/v1/courses
func (h *LookupHandler) ListCourses(c *gin.Context) {
	list, err := h.lookupSvc.ListCourses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// CreateProgram POST /api/v1/programs（管理员）
func (h *LookupHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	program, err := h.lookupSvc.CreateProgram(c.Request.Context(), &req)
	if err != nil {
		h.handleLookupError(c, err)
		return
	}
	response.Created(c, program)
}

// DeleteProgram DELETE /api/v1/programs/:id（管理员）
func (h *LookupHandler) DeleteProgram(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.lookupSvc.DeleteProgram(c.Request.Context(), id); err != nil {
		h.handleLookupError(c, err)
		return
	}
	response.OK(c, nil)
}

// CreateCourse POST /api/v1/courses（管理员）
func (h *LookupHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.lookupSvc.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleLookupError(c, err)
		return
	}
	response.Created(c, course)
}

// DeleteCourse DELETE /api/v1/courses/:id（管理员）
func (h *LookupHandler) DeleteCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.lookupSvc.DeleteCourse(c.Request.Context(), id); err != nil {
		h.handleLookupError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *LookupHandler) handleLookupError(c *gin.Context, err error) {
	var validationErr *pkgerrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14001, validationErr.Message, validationErr.Field)
	case errors.Is(err, service.ErrCourseCodeExists):
		response.Error(c, http.StatusConflict, 14002, "课程代码已存在")
	default:
		response.InternalError(c)
	}
}
