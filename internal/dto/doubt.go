package dto

import "time"

// ── 答疑模块 DTO ──

// CreateDoubtRequest 提问请求
type CreateDoubtRequest struct {
	Title    string `json:"title"    binding:"required,not_blank,max=200"`
	Question string `json:"question" binding:"required,not_blank"`
	Subject  string `json:"subject"  binding:"omitempty,max=100"`
}

// ReplyDoubtRequest 回复请求
type ReplyDoubtRequest struct {
	Reply string `json:"reply" binding:"required,not_blank"`
}

// ResolveDoubtRequest 标记解决请求
type ResolveDoubtRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

// DoubtListRequest 答疑列表请求
type DoubtListRequest struct {
	ListRequest
	Resolved *bool `form:"resolved"`
}

// DoubtResponse 答疑响应
type DoubtResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Question   string          `json:"question"`
	Subject    string          `json:"subject"`
	Author     string          `json:"author"`
	AuthorRole string          `json:"author_role"`
	Resolved   bool            `json:"resolved"`
	ReplyCount int64           `json:"reply_count"`
	Replies    []ReplyResponse `json:"replies,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ReplyResponse 回复响应
type ReplyResponse struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	AuthorRole string    `json:"author_role"`
	Reply      string    `json:"reply"`
	CreatedAt  time.Time `json:"created_at"`
}
