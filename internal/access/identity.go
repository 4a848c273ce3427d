// Package access 定义门户的身份、授权门（Gate）阶段与按角色计算的能力集合。
package access

import "campus-portal/backend/internal/model"

// Role 用户角色
type Role string

const (
	RoleStudent Role = model.RoleStudent
	RoleFaculty Role = model.RoleFaculty
)

// Valid 判断角色是否合法
func (r Role) Valid() bool { return r == RoleStudent || r == RoleFaculty }

// Identity 当前登录用户的身份快照
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ClassName string `json:"class_name,omitempty"`
}

// IsStudent 是否学生
func (i Identity) IsStudent() bool { return i.Role == RoleStudent }

// IsFaculty 是否教师
func (i Identity) IsFaculty() bool { return i.Role == RoleFaculty }

// FromUser 从身份档案构造身份快照
func FromUser(u *model.User) Identity {
	return Identity{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      Role(u.Role),
		ClassName: u.Class(),
	}
}

// ── Gate ──

// Stage 授权门阶段
type Stage string

const (
	StageLoading                Stage = "loading"
	StageUnauthenticated        Stage = "unauthenticated"
	StageAwaitingClassSelection Stage = "awaiting_class_selection"
	StageReady                  Stage = "ready"
)

// Evaluate 根据身份计算阶段：无身份 → 未登录；学生未选班级 → 等待选班；其余 → 就绪。
// loading 只在客户端重建会话期间出现，服务端不会返回。
func Evaluate(id *Identity) Stage {
	switch {
	case id == nil:
		return StageUnauthenticated
	case id.IsStudent() && id.ClassName == "":
		return StageAwaitingClassSelection
	default:
		return StageReady
	}
}
