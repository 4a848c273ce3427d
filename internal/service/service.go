package service

import (
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Dashboard   DashboardService
	Note        NoteService
	Assignment  AssignmentService
	Doubt       DoubtService
	Maintenance MaintenanceService
	Attendance  AttendanceService
	Fee         FeeService
	Certificate CertificateService
	Timetable   TimetableService
	Export      ExportService
}

// NewService 创建 Service 聚合；blacklist 可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Dashboard:   NewDashboardService(repo, logger),
		Note:        NewNoteService(repo, logger),
		Assignment:  NewAssignmentService(repo, logger),
		Doubt:       NewDoubtService(repo, logger),
		Maintenance: NewMaintenanceService(repo, logger),
		Attendance:  NewAttendanceService(repo, logger),
		Fee:         NewFeeService(repo, logger),
		Certificate: NewCertificateService(repo, logger),
		Timetable:   NewTimetableService(&cfg.Campus, repo, logger),
		Export:      NewExportService(&cfg.Campus, repo, logger),
	}
}
