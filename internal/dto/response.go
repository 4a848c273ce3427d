package dto

// ── 认证模块响应 ──

// SessionResponse 登录 / 注册 / 刷新成功响应
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"` // Access Token 有效期（秒）
	SessionView
}

// SessionView 会话视图：身份 + 授权门阶段 + 能力集合
type SessionView struct {
	User                *UserResponse       `json:"user"`
	Stage               string              `json:"stage"`
	IsAuthenticated     bool                `json:"is_authenticated"`
	NeedsClassSelection bool                `json:"needs_class_selection"`
	Capabilities        map[string][]string `json:"capabilities,omitempty"`
}

// UserResponse 身份信息响应（脱敏）
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ClassName string `json:"class_name,omitempty"`
}

// ClassesResponse 可选班级列表
type ClassesResponse struct {
	Classes []string `json:"classes"`
}

// ── 列表请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ListRequest 列表页的搜索 / 分类过滤 + 分页
type ListRequest struct {
	PaginationRequest
	Search   string `form:"search"   binding:"omitempty,max=100"`
	Category string `form:"category" binding:"omitempty,max=50"`
}

// [自证通过] internal/dto/response.go
