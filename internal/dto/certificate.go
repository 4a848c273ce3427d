package dto

import "time"

// ── 证书模块 DTO ──

// RequestCertificateRequest 申请证书
type RequestCertificateRequest struct {
	CertificateID string `json:"certificate_id" binding:"required,not_blank"`
}

// ProcessCertificateRequest 处理证书申请
type ProcessCertificateRequest struct {
	Status  string `json:"status"   binding:"required,oneof=Completed Rejected"`
	FileURL string `json:"file_url" binding:"omitempty,url,max=500"`
}

// CertificateResponse 证书目录条目
type CertificateResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Type              string  `json:"type"`
	Fee               float64 `json:"fee"`
	ProcessingTime    string  `json:"processing_time"`
	Available         bool    `json:"available"`
	UnavailableReason string  `json:"unavailable_reason,omitempty"`
}

// CertificateRequestResponse 证书申请响应
type CertificateRequestResponse struct {
	ID            string     `json:"id"`
	CertificateID string     `json:"certificate_id"`
	Certificate   string     `json:"certificate"`
	StudentID     string     `json:"student_id"`
	StudentName   string     `json:"student_name"`
	Status        string     `json:"status"`
	FileURL       string     `json:"file_url,omitempty"`
	GeneratedAt   *time.Time `json:"generated_at,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
}
