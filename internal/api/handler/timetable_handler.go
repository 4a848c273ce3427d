package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// GetMyTimetable 获取本班课表（学生取所选班级）
// GET /api/v1/timetable
func (h *TimetableHandler) GetMyTimetable(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	tt, err := h.svc.Get(c.Request.Context(), caller, "")
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, tt)
}

// GetTimetable 获取指定班级课表
// GET /api/v1/timetable/:class
//
// 学生访问任意班级都只会得到自己所在班级的课表
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	tt, err := h.svc.Get(c.Request.Context(), caller, c.Param("class"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, tt)
}

// GetGrid 按 天 × 节次 返回课表网格
// GET /api/v1/timetable/:class/grid
func (h *TimetableHandler) GetGrid(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	grid, err := h.svc.Grid(c.Request.Context(), caller, c.Param("class"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, grid)
}

// SetSlot 写入单个课表单元格（教师）
// PUT /api/v1/timetable/:class/slots
func (h *TimetableHandler) SetSlot(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.SetSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	slot, err := h.svc.SetSlot(c.Request.Context(), caller, c.Param("class"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, slot)
}

// ClearSlot 清空单个课表单元格（教师）
// DELETE /api/v1/timetable/:class/slots
func (h *TimetableHandler) ClearSlot(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ClearSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.svc.ClearSlot(c.Request.Context(), caller, c.Param("class"), &req); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 错误处理 ──

func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableClassRequired):
		response.BadRequest(c, 20001, "请先选择班级")
	case errors.Is(err, service.ErrTimetableSlotNotFound):
		response.NotFound(c, 20002, "课表单元格不存在")
	default:
		response.FromError(c, err)
	}
}
