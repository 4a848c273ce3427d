package access

import (
	"fmt"
	"sort"

	pkgerrors "campus-portal/backend/pkg/errors"
)

// Resource 受保护的资源
type Resource string

const (
	Notes        Resource = "notes"
	Assignments  Resource = "assignments"
	Doubts       Resource = "doubts"
	Maintenance  Resource = "maintenance"
	Attendance   Resource = "attendance"
	Fees         Resource = "fees"
	Certificates Resource = "certificates"
	Timetable    Resource = "timetable"
)

// Action 资源上的操作
type Action string

const (
	View         Action = "view"
	Create       Action = "create"
	Submit       Action = "submit"
	Grade        Action = "grade"
	Reply        Action = "reply"
	Resolve      Action = "resolve"
	UpdateStatus Action = "update_status"
	Record       Action = "record"
	ViewAll      Action = "view_all"
	Request      Action = "request"
	Process      Action = "process"
	Edit         Action = "edit"
)

type actionSet map[Action]struct{}

func setOf(actions ...Action) actionSet {
	s := make(actionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// matrix 角色 → 资源 → 允许的操作
var matrix = map[Role]map[Resource]actionSet{
	RoleStudent: {
		Notes:        setOf(View, Create),
		Assignments:  setOf(View, Submit),
		Doubts:       setOf(View, Create, Reply),
		Maintenance:  setOf(View, Create),
		Attendance:   setOf(View),
		Fees:         setOf(View),
		Certificates: setOf(View, Request),
		Timetable:    setOf(View),
	},
	RoleFaculty: {
		Notes:        setOf(View, Create),
		Assignments:  setOf(View, Create, Grade),
		Doubts:       setOf(View, Create, Reply, Resolve),
		Maintenance:  setOf(View, Create, UpdateStatus),
		Attendance:   setOf(View, ViewAll, Record),
		Fees:         setOf(View, ViewAll, Create),
		Certificates: setOf(View, Process),
		Timetable:    setOf(View, Edit),
	},
}

// Capabilities 某个身份的能力集合，每个身份只计算一次
type Capabilities struct {
	role    Role
	allowed map[Resource]actionSet
}

// For 计算身份的能力集合；未知角色得到空集合
func For(id Identity) Capabilities {
	return Capabilities{role: id.Role, allowed: matrix[id.Role]}
}

// Can 是否允许在资源上执行操作
func (c Capabilities) Can(res Resource, act Action) bool {
	_, ok := c.allowed[res][act]
	return ok
}

// Require 不允许时返回 Forbidden 错误
func (c Capabilities) Require(res Resource, act Action) error {
	if c.Can(res, act) {
		return nil
	}
	return pkgerrors.New(pkgerrors.ErrForbidden, fmt.Sprintf("角色 %s 无权对 %s 执行 %s", c.role, res, act))
}

// Actions 资源上允许的操作（排序后）
func (c Capabilities) Actions(res Resource) []string {
	out := make([]string, 0, len(c.allowed[res]))
	for a := range c.allowed[res] {
		out = append(out, string(a))
	}
	sort.Strings(out)
	return out
}

// Flags 前端按钮可见性，例如 {"canCreate": true, "canGrade": false}
func (c Capabilities) Flags(res Resource) map[string]bool {
	flags := map[string]bool{
		"canCreate":       c.Can(res, Create),
		"canSubmit":       c.Can(res, Submit),
		"canGrade":        c.Can(res, Grade),
		"canReply":        c.Can(res, Reply),
		"canResolve":      c.Can(res, Resolve),
		"canUpdateStatus": c.Can(res, UpdateStatus),
		"canRecord":       c.Can(res, Record),
		"canViewAll":      c.Can(res, ViewAll),
		"canRequest":      c.Can(res, Request),
		"canProcess":      c.Can(res, Process),
		"canEdit":         c.Can(res, Edit),
	}
	return flags
}

// Resources 全部资源
func Resources() []Resource {
	return []Resource{Notes, Assignments, Doubts, Maintenance, Attendance, Fees, Certificates, Timetable}
}

// Map 以资源名为键导出全部能力，用于会话响应
func (c Capabilities) Map() map[string][]string {
	out := make(map[string][]string, len(c.allowed))
	for _, res := range Resources() {
		if acts := c.Actions(res); len(acts) > 0 {
			out[string(res)] = acts
		}
	}
	return out
}
