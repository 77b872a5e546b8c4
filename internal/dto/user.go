package dto

// ── 账号管理 DTO ──

// CreateUserRequest 新增后台账号请求。Password 为空时生成临时密码
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Role     string `json:"role"     binding:"required,oneof=admin instructor"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

// CreateUserResponse 新增账号结果，TempPassword 仅在系统生成密码时返回
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password,omitempty"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ChangePasswordRequest 修改本人密码请求（bcrypt 只使用前 72 字节）
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
