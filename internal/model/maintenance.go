package model

import "time"

// 维修工单状态
const (
	MaintenancePending    = "Pending"
	MaintenanceInProgress = "In Progress"
	MaintenanceResolved   = "Resolved"
	MaintenanceRejected   = "Rejected"
)

// MaintenanceRequest 维修工单，对应 maintenance
type MaintenanceRequest struct {
	ID          string     `gorm:"type:uuid;primaryKey"       json:"id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text;not null"         json:"description"`
	Category    string     `gorm:"column:category;type:varchar(50);not null" json:"category"`
	Location    string     `gorm:"type:varchar(200);not null" json:"location"`
	Priority    string     `gorm:"type:varchar(20);not null"  json:"priority"`
	Status      string     `gorm:"type:varchar(20);not null"  json:"status"`
	StudentID   string     `gorm:"type:varchar(64);not null"  json:"student_id"`
	ReportedBy  string     `gorm:"type:varchar(100);not null" json:"reported_by"`
	AssignedTo  string     `gorm:"type:varchar(100);not null" json:"assigned_to"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Timestamps
}

// TableName 指定表名
func (MaintenanceRequest) TableName() string { return "maintenance" }

func (m *MaintenanceRequest) RecordID() string { return m.ID }

func (m *MaintenanceRequest) AssignID(id string, now time.Time) {
	m.ID = id
	m.stamp(now)
}

func (m *MaintenanceRequest) SearchText() []string {
	return []string{m.Title, m.Description, m.ReportedBy}
}

func (m *MaintenanceRequest) FilterCategory() string { return m.Category }

func (m *MaintenanceRequest) Field(column string) any {
	switch column {
	case "category":
		return m.Category
	case "status":
		return m.Status
	case "priority":
		return m.Priority
	case "student_id":
		return m.StudentID
	}
	return nil
}
