package dto

import "time"

// ── 作业模块 DTO ──

// CreateAssignmentRequest 布置作业请求
type CreateAssignmentRequest struct {
	Title       string `json:"title"       binding:"required,not_blank,max=200"`
	Subject     string `json:"subject"     binding:"required,not_blank,max=100"`
	Description string `json:"description" binding:"required,not_blank"`
	DueDate     string `json:"due_date"    binding:"required"` // YYYY-MM-DD
	MaxMarks    int    `json:"max_marks"   binding:"required,min=1,max=1000"`
}

// SubmitAssignmentRequest 提交作业请求
type SubmitAssignmentRequest struct {
	Content string `json:"content"  binding:"required,not_blank"`
	FileURL string `json:"file_url" binding:"omitempty,url,max=500"`
}

// GradeSubmissionRequest 批改请求；marks 的上限由作业满分决定
type GradeSubmissionRequest struct {
	Marks    *float64 `json:"marks"    binding:"required"`
	Feedback string   `json:"feedback" binding:"omitempty,max=2000"`
}

// AssignmentResponse 作业响应；Status 与 DaysRemaining 依查看者而定
type AssignmentResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Subject         string               `json:"subject"`
	Description     string               `json:"description"`
	DueDate         string               `json:"due_date"`
	MaxMarks        int                  `json:"max_marks"`
	AssignedBy      string               `json:"assigned_by"`
	Status          string               `json:"status"`
	DaysRemaining   int                  `json:"days_remaining"`
	SubmissionCount int64                `json:"submission_count"`
	Submissions     []SubmissionResponse `json:"submissions,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// SubmissionResponse 提交响应
type SubmissionResponse struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	Content      string     `json:"content"`
	FileURL      string     `json:"file_url,omitempty"`
	Status       string     `json:"status"`
	Marks        *float64   `json:"marks,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// AssignmentStatsResponse 教师端作业统计
type AssignmentStatsResponse struct {
	TotalAssignments int64 `json:"total_assignments"`
	TotalSubmissions int64 `json:"total_submissions"`
	PendingReview    int64 `json:"pending_review"`
	Graded           int64 `json:"graded"`
}
