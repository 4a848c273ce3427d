package dto

// ── 首页 DTO ──

// DashboardResponse 首页快捷统计，字段按角色取舍
type DashboardResponse struct {
	Role           string   `json:"role"`
	Greeting       string   `json:"greeting"`
	NotesShared    int64    `json:"notes_shared"`
	DueThisWeek    int64    `json:"due_this_week,omitempty"`
	PendingReview  int64    `json:"pending_review,omitempty"`
	AttendanceRate *float64 `json:"attendance_rate,omitempty"`
	OpenDoubts     int64    `json:"open_doubts"`
	PendingRepairs int64    `json:"pending_repairs"`
	Outstanding    *float64 `json:"outstanding_fees,omitempty"`
}
