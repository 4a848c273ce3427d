package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// NoteHandler 笔记模块 HTTP 处理器
type NoteHandler struct {
	noteSvc service.NoteService
}

// NewNoteHandler 创建 NoteHandler
func NewNoteHandler(noteSvc service.NoteService) *NoteHandler {
	return &NoteHandler{noteSvc: noteSvc}
}

// ListNotes 笔记列表（search / category / 分页）
// GET /api/v1/notes
func (h *NoteHandler) ListNotes(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	notes, total, err := h.noteSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleNoteError(c, err)
		return
	}

	response.OKPage(c, notes, total, req.GetPage(), req.GetPageSize())
}

// GetNote 笔记详情（浏览次数 +1）
// GET /api/v1/notes/:id
func (h *NoteHandler) GetNote(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	note, err := h.noteSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleNoteError(c, err)
		return
	}

	response.OK(c, note)
}

// CreateNote 上传笔记
// POST /api/v1/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	note, err := h.noteSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleNoteError(c, err)
		return
	}

	response.Created(c, note)
}

func (h *NoteHandler) handleNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(c, 12001, "笔记不存在")
	default:
		response.FromError(c, err)
	}
}
