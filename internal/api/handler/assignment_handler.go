package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments 作业列表（状态与剩余天数依查看者而定）
// GET /api/v1/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.assignmentSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAssignment 作业详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAssignment 布置作业（教师）
// POST /api/v1/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// Submit 提交作业（学生）
// POST /api/v1/assignments/:id/submissions
func (h *AssignmentHandler) Submit(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sub, err := h.assignmentSvc.Submit(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, sub)
}

// Grade 批改提交（教师）
// PUT /api/v1/assignments/submissions/:id/grade
func (h *AssignmentHandler) Grade(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sub, err := h.assignmentSvc.Grade(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, sub)
}

// Stats 作业统计（教师）
// GET /api/v1/assignments/stats
func (h *AssignmentHandler) Stats(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	stats, err := h.assignmentSvc.Stats(c.Request.Context(), caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, stats)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13001, "作业不存在")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 13002, "提交记录不存在")
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Error(c, http.StatusConflict, 13003, "已提交过该作业")
	case errors.Is(err, service.ErrSubmissionClosed):
		response.BadRequest(c, 13004, "作业已截止，无法提交")
	case errors.Is(err, service.ErrMarksOutOfRange):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 13005, "分数超出范围", err.Error())
	default:
		response.FromError(c, err)
	}
}
