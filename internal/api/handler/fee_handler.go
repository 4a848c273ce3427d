package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// FeeHandler 费用模块 HTTP 处理器
type FeeHandler struct {
	feeSvc service.FeeService
}

// NewFeeHandler 创建 FeeHandler
func NewFeeHandler(feeSvc service.FeeService) *FeeHandler {
	return &FeeHandler{feeSvc: feeSvc}
}

// Summary 费用明细与合计
// GET /api/v1/fees?student_id=xxx（student_id 仅教师可指定他人）
func (h *FeeHandler) Summary(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	summary, err := h.feeSvc.Summary(c.Request.Context(), caller, c.Query("student_id"))
	if err != nil {
		h.handleFeeError(c, err)
		return
	}

	response.OK(c, summary)
}

// CreateFee 新增费用项（教师）
// POST /api/v1/fees
func (h *FeeHandler) CreateFee(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	fee, err := h.feeSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleFeeError(c, err)
		return
	}

	response.Created(c, fee)
}

func (h *FeeHandler) handleFeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 18001, "学生不存在")
	case errors.Is(err, service.ErrFeeOverpaid):
		response.Error(c, http.StatusUnprocessableEntity, 18002, "已付金额不能超过应付金额")
	default:
		response.FromError(c, err)
	}
}
