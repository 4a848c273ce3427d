package model

import "time"

// 证书申请状态
const (
	CertificateProcessing = "Processing"
	CertificateCompleted  = "Completed"
	CertificateRejected   = "Rejected"
)

// Certificate 可申请证书目录，对应 certificates
type Certificate struct {
	ID                string    `gorm:"type:uuid;primaryKey"            json:"id"`
	Name              string    `gorm:"type:varchar(100);not null"      json:"name"`
	Description       string    `gorm:"type:text;not null"              json:"description"`
	Type              string    `gorm:"type:varchar(50);not null"       json:"type"`
	Fee               float64   `gorm:"type:numeric(10,2);not null"     json:"fee"`
	ProcessingTime    string    `gorm:"type:varchar(50);not null"       json:"processing_time"`
	Available         bool      `gorm:"not null;default:true"           json:"available"`
	UnavailableReason string    `gorm:"type:varchar(200);not null"      json:"unavailable_reason,omitempty"`
	CreatedAt         time.Time `gorm:"not null"                        json:"created_at"`
}

// TableName 指定表名
func (Certificate) TableName() string { return "certificates" }

func (c *Certificate) RecordID() string { return c.ID }

func (c *Certificate) AssignID(id string, now time.Time) {
	c.ID = id
	c.CreatedAt = now
}

func (c *Certificate) Touch(time.Time) {}

func (c *Certificate) SearchText() []string { return []string{c.Name, c.Description, ""} }

func (c *Certificate) FilterCategory() string { return c.Type }

func (c *Certificate) Field(column string) any {
	switch column {
	case "type":
		return c.Type
	case "available":
		return c.Available
	}
	return nil
}

// CertificateRequest 证书申请，对应 certificate_requests
type CertificateRequest struct {
	ID            string     `gorm:"type:uuid;primaryKey"       json:"id"`
	CertificateID string     `gorm:"type:uuid;not null"         json:"certificate_id"`
	Certificate   string     `gorm:"type:varchar(100);not null" json:"certificate"`
	StudentID     string     `gorm:"type:varchar(64);not null"  json:"student_id"`
	StudentName   string     `gorm:"type:varchar(100);not null" json:"student_name"`
	Status        string     `gorm:"type:varchar(20);not null"  json:"status"`
	FileURL       *string    `gorm:"type:varchar(500)"          json:"file_url,omitempty"`
	GeneratedAt   *time.Time `json:"generated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null"                   json:"created_at"`
}

// TableName 指定表名
func (CertificateRequest) TableName() string { return "certificate_requests" }

func (r *CertificateRequest) RecordID() string { return r.ID }

func (r *CertificateRequest) AssignID(id string, now time.Time) {
	r.ID = id
	r.CreatedAt = now
}

func (r *CertificateRequest) Touch(time.Time) {}

func (r *CertificateRequest) SearchText() []string {
	return []string{r.Certificate, "", r.StudentName}
}

func (r *CertificateRequest) FilterCategory() string { return r.Status }

func (r *CertificateRequest) Field(column string) any {
	switch column {
	case "student_id":
		return r.StudentID
	case "status":
		return r.Status
	case "certificate_id":
		return r.CertificateID
	}
	return nil
}
