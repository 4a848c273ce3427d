package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// MaintenanceHandler 报修模块 HTTP 处理器
type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
}

// NewMaintenanceHandler 创建 MaintenanceHandler
func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

// ListRequests 工单列表（search / category / status）
// GET /api/v1/maintenance
func (h *MaintenanceHandler) ListRequests(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.MaintenanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.maintenanceSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleMaintenanceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRequest 工单详情
// GET /api/v1/maintenance/:id
func (h *MaintenanceHandler) GetRequest(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	m, err := h.maintenanceSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleMaintenanceError(c, err)
		return
	}

	response.OK(c, m)
}

// CreateRequest 报修
// POST /api/v1/maintenance
func (h *MaintenanceHandler) CreateRequest(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	m, err := h.maintenanceSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleMaintenanceError(c, err)
		return
	}

	response.Created(c, m)
}

// UpdateStatus 变更工单状态（教师）
// PUT /api/v1/maintenance/:id/status
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.UpdateMaintenanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	m, err := h.maintenanceSvc.UpdateStatus(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleMaintenanceError(c, err)
		return
	}

	response.OK(c, m)
}

// Stats 工单统计
// GET /api/v1/maintenance/stats
func (h *MaintenanceHandler) Stats(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	stats, err := h.maintenanceSvc.Stats(c.Request.Context(), caller)
	if err != nil {
		h.handleMaintenanceError(c, err)
		return
	}

	response.OK(c, stats)
}

func (h *MaintenanceHandler) handleMaintenanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMaintenanceNotFound):
		response.NotFound(c, 15001, "维修工单不存在")
	case errors.Is(err, service.ErrMaintenanceTransition):
		response.ErrorWithDetails(c, http.StatusConflict, 15002, "工单状态不允许此变更", err.Error())
	case errors.Is(err, service.ErrMaintenanceInvalidStatus):
		response.BadRequest(c, 15003, "未知的工单状态")
	default:
		response.FromError(c, err)
	}
}
