package api

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Role string `binding:"required,campus_role"`
	Name string `binding:"required,not_blank"`
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	tests := []struct {
		name string
		in   sample
		ok   bool
	}{
		{"学生", sample{Role: "student", Name: "Priya"}, true},
		{"教师", sample{Role: "faculty", Name: "Anjali"}, true},
		{"未知角色", sample{Role: "admin", Name: "x"}, false},
		{"空白姓名", sample{Role: "student", Name: "   "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.in)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}
