package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// DoubtHandler 答疑模块 HTTP 处理器
type DoubtHandler struct {
	doubtSvc service.DoubtService
}

// NewDoubtHandler 创建 DoubtHandler
func NewDoubtHandler(doubtSvc service.DoubtService) *DoubtHandler {
	return &DoubtHandler{doubtSvc: doubtSvc}
}

// ListDoubts 问题列表（可按 resolved 过滤）
// GET /api/v1/doubts
func (h *DoubtHandler) ListDoubts(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.DoubtListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.doubtSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleDoubtError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetDoubt 问题详情（含回复）
// GET /api/v1/doubts/:id
func (h *DoubtHandler) GetDoubt(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	d, err := h.doubtSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleDoubtError(c, err)
		return
	}

	response.OK(c, d)
}

// CreateDoubt 提问
// POST /api/v1/doubts
func (h *DoubtHandler) CreateDoubt(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	d, err := h.doubtSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleDoubtError(c, err)
		return
	}

	response.Created(c, d)
}

// Reply 回复问题（任意角色）
// POST /api/v1/doubts/:id/replies
func (h *DoubtHandler) Reply(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ReplyDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	r, err := h.doubtSvc.Reply(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleDoubtError(c, err)
		return
	}

	response.Created(c, r)
}

// Resolve 标记已解决 / 未解决（教师）
// PUT /api/v1/doubts/:id/resolve
func (h *DoubtHandler) Resolve(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ResolveDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	d, err := h.doubtSvc.SetResolved(c.Request.Context(), caller, c.Param("id"), *req.Resolved)
	if err != nil {
		h.handleDoubtError(c, err)
		return
	}

	response.OK(c, d)
}

func (h *DoubtHandler) handleDoubtError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDoubtNotFound):
		response.NotFound(c, 14001, "问题不存在")
	default:
		response.FromError(c, err)
	}
}
