package model

import "time"

// AttendanceRecord 学生单科出勤，对应 attendance
// 出勤率不落库，读取时由 Percentage 计算
type AttendanceRecord struct {
	ID              string     `gorm:"type:uuid;primaryKey"       json:"id"`
	StudentID       string     `gorm:"type:varchar(64);not null"  json:"student_id"`
	StudentName     string     `gorm:"type:varchar(100);not null" json:"student_name"`
	Subject         string     `gorm:"type:varchar(100);not null" json:"subject"`
	Teacher         string     `gorm:"type:varchar(100);not null" json:"teacher"`
	TotalClasses    int        `gorm:"not null;default:0"         json:"total_classes"`
	AttendedClasses int        `gorm:"not null;default:0"         json:"attended_classes"`
	LastAttended    *time.Time `gorm:"type:date"                  json:"last_attended,omitempty"`
	Timestamps
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance" }

// Percentage round(attended/total*100, 1)，total 为 0 时为 0
func (a *AttendanceRecord) Percentage() float64 {
	return RoundPercent(a.AttendedClasses, a.TotalClasses)
}

func (a *AttendanceRecord) RecordID() string { return a.ID }

func (a *AttendanceRecord) AssignID(id string, now time.Time) {
	a.ID = id
	a.stamp(now)
}

func (a *AttendanceRecord) SearchText() []string {
	return []string{a.Subject, a.Teacher, a.StudentName}
}

func (a *AttendanceRecord) FilterCategory() string { return a.Subject }

func (a *AttendanceRecord) Field(column string) any {
	switch column {
	case "student_id":
		return a.StudentID
	case "subject":
		return a.Subject
	}
	return nil
}
