package service

import (
	"strings"
	"time"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// requireText 去掉首尾空白后不能为空
func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", pkgerrors.Validation(field, "不能为空")
	}
	return v, nil
}

// parseDate 解析 YYYY-MM-DD
func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, pkgerrors.Validation(field, "日期格式应为 YYYY-MM-DD")
	}
	return t, nil
}

// startOfDay 本地时区零点
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween 两个日期之间相差的自然日数（to - from）。
// 按 UTC 日历日相减，夏令时切换日不会少算一天。
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func listQuery(req *dto.ListRequest, scopes ...repository.Scope) repository.Query {
	return repository.Query{
		Filter: repository.FilterState{SearchTerm: req.Search, Category: req.Category},
		Scopes: scopes,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	}
}

func defaultString(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}

func optionalString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
