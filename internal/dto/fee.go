package dto

import "time"

// ── 学费模块 DTO ──

// CreateFeeRequest 新增费用条目（教师记账）
type CreateFeeRequest struct {
	StudentID  string  `json:"student_id"  binding:"required,not_blank"`
	Type       string  `json:"type"        binding:"required,not_blank,max=50"`
	Semester   string  `json:"semester"    binding:"omitempty,max=50"`
	Amount     float64 `json:"amount"      binding:"required,gt=0"`
	PaidAmount float64 `json:"paid_amount" binding:"omitempty,gte=0"`
	DueDate    string  `json:"due_date"    binding:"required"` // YYYY-MM-DD
}

// FeeResponse 费用条目响应，Status 为派生值
type FeeResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Semester    string     `json:"semester"`
	Amount      float64    `json:"amount"`
	PaidAmount  float64    `json:"paid_amount"`
	Outstanding float64    `json:"outstanding"`
	Status      string     `json:"status"`
	DueDate     string     `json:"due_date"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// FeeSummaryResponse 学生费用汇总
type FeeSummaryResponse struct {
	StudentID   string        `json:"student_id"`
	TotalFees   float64       `json:"total_fees"`
	TotalPaid   float64       `json:"total_paid"`
	Outstanding float64       `json:"outstanding"`
	Fees        []FeeResponse `json:"fees"`
}
