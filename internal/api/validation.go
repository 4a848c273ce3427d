// Package api 汇集 HTTP 层共享的请求校验规则，具体路由见 router 子包。
package api

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"campus-portal/backend/internal/access"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 默认校验器注册自定义规则（可重复调用）：
//   - campus_role: student | faculty
//   - not_blank:   去掉首尾空白后非空
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("campus_role", validateRole); err != nil {
			return
		}
		err = v.RegisterValidation("not_blank", validateNotBlank)
	})
	return err
}

func validateRole(fl validator.FieldLevel) bool {
	return access.Role(fl.Field().String()).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
