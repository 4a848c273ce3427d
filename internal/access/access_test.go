package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-portal/backend/internal/model"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		id   *Identity
		want Stage
	}{
		{"无身份", nil, StageUnauthenticated},
		{"学生未选班级", &Identity{ID: "1", Role: RoleStudent}, StageAwaitingClassSelection},
		{"学生已选班级", &Identity{ID: "1", Role: RoleStudent, ClassName: "IT-B"}, StageReady},
		{"教师无班级", &Identity{ID: "2", Role: RoleFaculty}, StageReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.id))
		})
	}
}

func TestCapabilities_StudentCannotGradeOrResolve(t *testing.T) {
	caps := For(Identity{ID: "1", Role: RoleStudent, ClassName: "IT-B"})

	assert.True(t, caps.Can(Assignments, Submit))
	assert.False(t, caps.Can(Assignments, Grade))
	assert.False(t, caps.Can(Doubts, Resolve))
	assert.False(t, caps.Can(Maintenance, UpdateStatus))
	assert.False(t, caps.Can(Timetable, Edit))

	err := caps.Require(Assignments, Grade)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrForbidden))
}

func TestCapabilities_Faculty(t *testing.T) {
	caps := For(Identity{ID: "2", Role: RoleFaculty})

	assert.NoError(t, caps.Require(Assignments, Grade))
	assert.NoError(t, caps.Require(Doubts, Resolve))
	assert.NoError(t, caps.Require(Attendance, Record))
	assert.False(t, caps.Can(Assignments, Submit))
	assert.False(t, caps.Can(Certificates, Request))

	flags := caps.Flags(Maintenance)
	assert.True(t, flags["canUpdateStatus"])
	assert.True(t, flags["canCreate"])
	assert.False(t, flags["canGrade"])
}

func TestCapabilities_UnknownRoleHasNothing(t *testing.T) {
	caps := For(Identity{ID: "x", Role: "admin"})
	assert.Empty(t, caps.Map())
	assert.Error(t, caps.Require(Notes, View))
}

func TestFromUser(t *testing.T) {
	class := "CSE-A"
	id := FromUser(&model.User{ID: "u1", Name: "Rohan", Email: "r@campus.edu", Role: "student", ClassName: &class})
	assert.Equal(t, "CSE-A", id.ClassName)
	assert.True(t, id.IsStudent())
	assert.Equal(t, StageReady, Evaluate(&id))
}
