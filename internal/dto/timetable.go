package dto

import "time"

// ── 课表模块 DTO ──

// SetSlotRequest 设置单元格（按复合键 upsert）
type SetSlotRequest struct {
	Day      string `json:"day"       binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	TimeSlot string `json:"time_slot" binding:"required,not_blank,max=40"`
	Subject  string `json:"subject"   binding:"required,not_blank,max=100"`
	Teacher  string `json:"teacher"   binding:"omitempty,max=100"`
	Room     string `json:"room"      binding:"omitempty,max=50"`
}

// ClearSlotRequest 清除单元格
type ClearSlotRequest struct {
	Day      string `json:"day"       binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	TimeSlot string `json:"time_slot" binding:"required,not_blank"`
}

// SlotResponse 单元格响应
type SlotResponse struct {
	Day       string    `json:"day"`
	TimeSlot  string    `json:"time_slot"`
	Subject   string    `json:"subject"`
	Teacher   string    `json:"teacher,omitempty"`
	Room      string    `json:"room,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimetableResponse 班级课表
type TimetableResponse struct {
	ClassName string         `json:"class_name"`
	Slots     []SlotResponse `json:"slots"`
}

// TimetableGridResponse 行 = 时间段、列 = Monday..Saturday 的网格投影
type TimetableGridResponse struct {
	ClassName string             `json:"class_name"`
	Days      []string           `json:"days"`
	Rows      []TimetableGridRow `json:"rows"`
}

// TimetableGridRow 网格一行；Cells 以星期为键，空单元格省略
type TimetableGridRow struct {
	Time  string            `json:"time"`
	Cells map[string]string `json:"cells"`
}
