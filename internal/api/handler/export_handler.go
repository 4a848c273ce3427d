package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/internal/service"
	"campus-portal/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimetable 导出班级课表
// GET /api/v1/timetable/:class/export
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.Timetable(c.Request.Context(), caller, c.Param("class"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// ExportAttendance 导出全体学生考勤（教师）
// GET /api/v1/attendance/export
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.Attendance(c.Request.Context(), caller)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// sendXLSX 设置下载响应头并写出文件
func sendXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16001, "没有可导出的数据")
	case errors.Is(err, service.ErrTimetableClassRequired):
		response.BadRequest(c, 16002, "请指定要导出的班级")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.FromError(c, err)
	}
}
