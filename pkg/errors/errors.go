package errors

import (
	"errors"
	"fmt"
)

// ── 错误分类 ──
// 业务模块的哨兵错误通过 New 包装以下分类之一，Handler 层先按模块错误映射，
// 未命中时再按分类兜底。

var (
	ErrAuth       = errors.New("认证失败")
	ErrValidation = errors.New("参数校验失败")
	ErrForbidden  = errors.New("无权限操作")
	ErrNotFound   = errors.New("资源不存在")
	ErrRange      = errors.New("数值超出范围")
	ErrConflict   = errors.New("资源冲突")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// kindError 携带分类的业务错误
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New 创建归属于 kind 分类的业务哨兵错误
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// FieldError 字段级校验错误（kind 固定为 ErrValidation）
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Validation 创建字段校验错误
func Validation(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}

// Kind 返回错误所属分类，未知错误返回 nil
func Kind(err error) error {
	for _, k := range []error{ErrAuth, ErrValidation, ErrForbidden, ErrNotFound, ErrRange, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
