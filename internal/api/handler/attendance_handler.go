package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MySummary 当前用户的考勤汇总
// GET /api/v1/attendance/me
func (h *AttendanceHandler) MySummary(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	summary, err := h.attendanceSvc.Summary(c.Request.Context(), caller, "")
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// StudentSummary 指定学生的考勤汇总（教师）
// GET /api/v1/attendance/students/:id
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	summary, err := h.attendanceSvc.Summary(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// Roster 全体学生考勤总览（教师）
// GET /api/v1/attendance/students
func (h *AttendanceHandler) Roster(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	roster, err := h.attendanceSvc.Roster(c.Request.Context(), caller)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, roster)
}

// Record 登记考勤（教师）
// POST /api/v1/attendance/record
func (h *AttendanceHandler) Record(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.attendanceSvc.Record(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, rec)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	default:
		response.FromError(c, err)
	}
}
