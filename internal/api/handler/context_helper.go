package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/api/middleware"
	"campus-portal/backend/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中安全提取身份快照。
// 如果 JWT 中间件未正确注入身份，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (access.Identity, bool) {
	v, exists := c.Get(middleware.ContextIdentity)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return access.Identity{}, false
	}
	id, ok := v.(access.Identity)
	if !ok || id.ID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return access.Identity{}, false
	}
	return id, true
}

// MustGetSessionID 从 Gin 上下文中安全提取会话 ID
func MustGetSessionID(c *gin.Context) (string, bool) {
	sid := c.GetString(middleware.ContextSessionID)
	if sid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return sid, true
}

// tokenInfo 当前 Access Token 的 jti 与过期时间（登出吊销用）
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenJTI)
	exp, _ := c.Get(middleware.ContextTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// bindFailed 统一处理参数绑定失败
func bindFailed(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
