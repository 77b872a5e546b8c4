package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"student-records/internal/api/middleware"
	"student-records/internal/service"
	"student-records/pkg/response"
)

// MustGetCaller 从 Gin 上下文中提取 JWT 中间件注入的账号信息。
// 上下文缺失时写入 401 响应并返回 false，调用方应直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:   userID,
		Username: c.GetString(middleware.CtxUsername),
		Role:     c.GetString(middleware.CtxRole),
	}, true
}

// tokenMeta 当前 Token 的 jti 与过期时间（登出拉黑用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp, _ := c.Get(middleware.CtxTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// parseIDParam 解析路径参数中的自增 ID，非法时写入 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "无效的 "+name)
		return 0, false
	}
	return uint(id), true
}

// IsBodyTooLarge 判断绑定失败是否由 BodyLimit 中间件截断请求体导致
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// bindError 统一处理请求体 / 查询参数绑定失败
func bindError(c *gin.Context, err error) {
	if IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
