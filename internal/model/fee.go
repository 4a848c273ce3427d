package model

import "time"

// 费用状态（派生，不落库）
const (
	FeePaid    = "Paid"
	FeePartial = "Partial"
	FeePending = "Pending"
)

// Fee 学费条目，对应 fees
type Fee struct {
	ID         string     `gorm:"type:uuid;primaryKey"            json:"id"`
	StudentID  string     `gorm:"type:varchar(64);not null"       json:"student_id"`
	Type       string     `gorm:"type:varchar(50);not null"       json:"type"`
	Semester   string     `gorm:"type:varchar(50);not null"       json:"semester"`
	Amount     float64    `gorm:"type:numeric(12,2);not null"     json:"amount"`
	PaidAmount float64    `gorm:"type:numeric(12,2);not null"     json:"paid_amount"`
	DueDate    time.Time  `gorm:"type:date;not null"              json:"due_date"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Fee) TableName() string { return "fees" }

// Status 由已付金额派生
func (f *Fee) Status() string {
	switch {
	case f.PaidAmount >= f.Amount:
		return FeePaid
	case f.PaidAmount > 0:
		return FeePartial
	default:
		return FeePending
	}
}

// Outstanding 未付金额
func (f *Fee) Outstanding() float64 {
	if f.PaidAmount >= f.Amount {
		return 0
	}
	return f.Amount - f.PaidAmount
}

func (f *Fee) RecordID() string { return f.ID }

func (f *Fee) AssignID(id string, now time.Time) {
	f.ID = id
	f.stamp(now)
}

func (f *Fee) SearchText() []string { return []string{f.Type, f.Semester, ""} }

func (f *Fee) FilterCategory() string { return f.Type }

func (f *Fee) Field(column string) any {
	switch column {
	case "student_id":
		return f.StudentID
	case "semester":
		return f.Semester
	}
	return nil
}
