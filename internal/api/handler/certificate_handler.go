package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

// CertificateHandler 证书模块 HTTP 处理器
type CertificateHandler struct {
	certificateSvc service.CertificateService
}

// NewCertificateHandler 创建 CertificateHandler
func NewCertificateHandler(certificateSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateSvc: certificateSvc}
}

// Catalog 证书目录
// GET /api/v1/certificates
func (h *CertificateHandler) Catalog(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.certificateSvc.Catalog(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// RequestCertificate 申请证书（学生）
// POST /api/v1/certificates/requests
func (h *CertificateHandler) RequestCertificate(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.RequestCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	r, err := h.certificateSvc.Request(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.Created(c, r)
}

// ListRequests 申请列表（学生仅见自己的）
// GET /api/v1/certificates/requests
func (h *CertificateHandler) ListRequests(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.certificateSvc.ListRequests(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Process 审批申请（教师）
// PUT /api/v1/certificates/requests/:id/status
func (h *CertificateHandler) Process(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	var req dto.ProcessCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	r, err := h.certificateSvc.Process(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.OK(c, r)
}

func (h *CertificateHandler) handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCertificateNotFound):
		response.NotFound(c, 19001, "证书不存在")
	case errors.Is(err, service.ErrCertificateUnavailable):
		response.BadRequest(c, 19002, "该证书暂不可申请")
	case errors.Is(err, service.ErrCertificateRequestNotFound):
		response.NotFound(c, 19003, "证书申请不存在")
	case errors.Is(err, service.ErrCertificateAlreadyHandled):
		response.Error(c, http.StatusConflict, 19004, "证书申请已处理")
	default:
		response.FromError(c, err)
	}
}
