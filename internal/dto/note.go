package dto

import "time"

// ── 笔记模块 DTO ──

// CreateNoteRequest 上传笔记请求
type CreateNoteRequest struct {
	Title       string `json:"title"       binding:"required,not_blank,max=200"`
	Subject     string `json:"subject"     binding:"required,not_blank,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Content     string `json:"content"`
	FileType    string `json:"file_type"   binding:"omitempty,oneof=PDF DOC DOCX PPT PPTX TXT"`
	Tags        string `json:"tags"        binding:"omitempty,max=200"` // 逗号分隔
}

// NoteResponse 笔记响应
type NoteResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	FileType    string    `json:"file_type"`
	Tags        []string  `json:"tags"`
	Views       int       `json:"views"`
	Author      string    `json:"author"`
	AuthorRole  string    `json:"author_role"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
