package dto

import "time"

// ── 维修模块 DTO ──

// CreateMaintenanceRequest 报修请求
type CreateMaintenanceRequest struct {
	Title       string `json:"title"       binding:"required,not_blank,max=200"`
	Description string `json:"description" binding:"required,not_blank"`
	Location    string `json:"location"    binding:"required,not_blank,max=200"`
	Category    string `json:"category"    binding:"omitempty,max=50"`
	Priority    string `json:"priority"    binding:"omitempty,oneof=Low Medium High Critical"`
}

// UpdateMaintenanceStatusRequest 更新工单状态请求
type UpdateMaintenanceStatusRequest struct {
	Status     string `json:"status"      binding:"required,oneof='In Progress' Resolved Rejected"`
	AssignedTo string `json:"assigned_to" binding:"omitempty,max=100"`
}

// MaintenanceListRequest 工单列表请求
type MaintenanceListRequest struct {
	ListRequest
	Status string `form:"status" binding:"omitempty,oneof=Pending 'In Progress' Resolved Rejected"`
}

// MaintenanceResponse 工单响应
type MaintenanceResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	ReportedBy  string     `json:"reported_by"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MaintenanceStatsResponse 工单统计
type MaintenanceStatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
}
