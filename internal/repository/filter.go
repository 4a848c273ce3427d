package repository

import (
	"strings"

	"campus-portal/backend/internal/model"
)

// CategoryAll 分类过滤中表示"不过滤"的取值
const CategoryAll = "All"

// FilterState 列表页的搜索与分类过滤条件
type FilterState struct {
	SearchTerm string
	Category   string
}

// Active 是否存在任何过滤条件
func (f FilterState) Active() bool {
	return f.SearchTerm != "" || !matchesAllCategories(f.Category)
}

func matchesAllCategories(category string) bool {
	return category == "" || category == CategoryAll
}

// Scope 额外的等值过滤（如 status = 'Pending'、student_id = ?）
type Scope struct {
	Column string
	Value  any
}

// Eq 构造等值过滤
func Eq(column string, value any) Scope {
	return Scope{Column: column, Value: value}
}

// Query 列表查询参数；Limit 为 0 表示不分页
type Query struct {
	Filter FilterState
	Scopes []Scope
	Offset int
	Limit  int
}

// Matches 判断单条记录是否满足过滤条件：
// 搜索词（忽略大小写）是标题、描述或作者任一字段的子串，并且分类为 All / 空 或与记录分类完全相等。
func Matches(rec model.Record, f FilterState) bool {
	if !matchesAllCategories(f.Category) && rec.FilterCategory() != f.Category {
		return false
	}
	// 搜索词原样参与匹配，不裁剪空白
	term := strings.ToLower(f.SearchTerm)
	if term == "" {
		return true
	}
	for _, text := range rec.SearchText() {
		if strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}

func matchesScopes(rec model.Record, scopes []Scope) bool {
	for _, s := range scopes {
		if rec.Field(s.Column) != s.Value {
			return false
		}
	}
	return true
}

// ApplyFilter 纯函数：返回满足过滤条件的新切片，不修改输入，保持原有顺序
func ApplyFilter[T any, P recordPtr[T]](items []T, f FilterState) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if Matches(P(&items[i]), f) {
			out = append(out, items[i])
		}
	}
	return out
}

// page 按 offset/limit 截取，limit<=0 时返回全部
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
