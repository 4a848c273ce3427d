package model

// 角色
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// User 身份档案表，对应 profiles
type User struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	ClassName    *string `gorm:"type:varchar(20)"                               json:"class_name,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null;default:''"          json:"-"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "profiles" }

// Class 返回班级名，未选择时为空串
func (u *User) Class() string {
	if u.ClassName == nil {
		return ""
	}
	return *u.ClassName
}

// [自证通过] internal/model/user.go
