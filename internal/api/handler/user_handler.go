package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-records/internal/dto"
	"student-records/internal/service"
	"student-records/pkg/response"
)

// UserHandler 后台账号管理 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 账号列表（管理员）
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, users)
}

// Create 新增账号（管理员）
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, result)
}

// Delete 删除账号（管理员，不能删除自己）
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), caller, id); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword 重置为临时密码（管理员）
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, result)
}

// ChangePassword 修改本人密码
// PUT /api/v1/auth/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), caller, &req); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameExists):
		response.Error(c, http.StatusConflict, 11101, "用户名已存在")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 11102, "不能删除自己")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11103, "原密码错误")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "账号不存在")
	default:
		response.InternalError(c)
	}
}
