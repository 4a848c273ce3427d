package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ── 维修模块业务错误 ──

var (
	ErrMaintenanceNotFound      = pkgerrors.New(pkgerrors.ErrNotFound, "维修工单不存在")
	ErrMaintenanceTransition    = pkgerrors.New(pkgerrors.ErrConflict, "工单状态不允许此变更")
	ErrMaintenanceInvalidStatus = pkgerrors.Validation("status", "未知的工单状态")
)

// MaintenancePriorities 可选优先级
var MaintenancePriorities = []string{"Low", "Medium", "High", "Critical"}

// maintenanceTransitions 允许的状态流转；Resolved / Rejected 为终态
var maintenanceTransitions = map[string][]string{
	model.MaintenancePending:    {model.MaintenanceInProgress, model.MaintenanceRejected},
	model.MaintenanceInProgress: {model.MaintenanceResolved, model.MaintenanceRejected},
}

// CanTransition 判断工单能否从 from 变为 to
func CanTransition(from, to string) bool {
	for _, next := range maintenanceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MaintenanceService 维修工单业务接口
type MaintenanceService interface {
	Create(ctx context.Context, caller access.Identity, req *dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error)
	List(ctx context.Context, caller access.Identity, req *dto.MaintenanceListRequest) ([]dto.MaintenanceResponse, int64, error)
	Get(ctx context.Context, caller access.Identity, id string) (*dto.MaintenanceResponse, error)
	// UpdateStatus 仅教师可操作，状态必须按流转表前进
	UpdateStatus(ctx context.Context, caller access.Identity, id string, req *dto.UpdateMaintenanceStatusRequest) (*dto.MaintenanceResponse, error)
	Stats(ctx context.Context, caller access.Identity) (*dto.MaintenanceStatsResponse, error)
}

type maintenanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMaintenanceService 创建 MaintenanceService 实例
func NewMaintenanceService(repo *repository.Repository, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *maintenanceService) Create(ctx context.Context, caller access.Identity, req *dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error) {
	if err := access.For(caller).Require(access.Maintenance, access.Create); err != nil {
		return nil, err
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	description, err := requireText("description", req.Description)
	if err != nil {
		return nil, err
	}
	location, err := requireText("location", req.Location)
	if err != nil {
		return nil, err
	}
	priority := defaultString(req.Priority, "Medium")
	if !contains(MaintenancePriorities, priority) {
		return nil, pkgerrors.Validation("priority", "优先级只能是 Low / Medium / High / Critical")
	}

	m := &model.MaintenanceRequest{
		Title:       title,
		Description: description,
		Category:    defaultString(req.Category, "General"),
		Location:    location,
		Priority:    priority,
		Status:      model.MaintenancePending,
		StudentID:   caller.ID,
		ReportedBy:  caller.Name,
	}
	if err := s.repo.Maintenance.Create(ctx, m); err != nil {
		s.logger.Error("创建维修工单失败", zap.Error(err))
		return nil, err
	}
	return toMaintenanceResponse(m), nil
}

// ────────────────────── List ──────────────────────

func (s *maintenanceService) List(ctx context.Context, caller access.Identity, req *dto.MaintenanceListRequest) ([]dto.MaintenanceResponse, int64, error) {
	if err := access.For(caller).Require(access.Maintenance, access.View); err != nil {
		return nil, 0, err
	}
	var scopes []repository.Scope
	if req.Status != "" {
		scopes = append(scopes, repository.Eq("status", req.Status))
	}
	items, total, err := s.repo.Maintenance.List(ctx, listQuery(&req.ListRequest, scopes...))
	if err != nil {
		s.logger.Error("列出维修工单失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MaintenanceResponse, 0, len(items))
	for i := range items {
		result = append(result, *toMaintenanceResponse(&items[i]))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *maintenanceService) Get(ctx context.Context, caller access.Identity, id string) (*dto.MaintenanceResponse, error) {
	if err := access.For(caller).Require(access.Maintenance, access.View); err != nil {
		return nil, err
	}
	m, err := s.repo.Maintenance.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		s.logger.Error("查询维修工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toMaintenanceResponse(m), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *maintenanceService) UpdateStatus(ctx context.Context, caller access.Identity, id string, req *dto.UpdateMaintenanceStatusRequest) (*dto.MaintenanceResponse, error) {
	if err := access.For(caller).Require(access.Maintenance, access.UpdateStatus); err != nil {
		return nil, err
	}
	switch req.Status {
	case model.MaintenanceInProgress, model.MaintenanceResolved, model.MaintenanceRejected:
	default:
		return nil, ErrMaintenanceInvalidStatus
	}

	now := s.now()
	m, err := s.repo.Maintenance.Update(ctx, id, func(m *model.MaintenanceRequest) error {
		if !CanTransition(m.Status, req.Status) {
			return fmt.Errorf("%w: %s → %s", ErrMaintenanceTransition, m.Status, req.Status)
		}
		m.Status = req.Status
		if assignee := strings.TrimSpace(req.AssignedTo); assignee != "" {
			m.AssignedTo = assignee
		}
		if req.Status == model.MaintenanceResolved {
			m.ResolvedAt = &now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		if !errors.Is(err, ErrMaintenanceTransition) {
			s.logger.Error("更新维修工单失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("维修工单状态变更",
		zap.String("id", id),
		zap.String("status", m.Status),
		zap.String("operator", caller.ID),
	)
	return toMaintenanceResponse(m), nil
}

// ────────────────────── Stats ──────────────────────

func (s *maintenanceService) Stats(ctx context.Context, caller access.Identity) (*dto.MaintenanceStatsResponse, error) {
	if err := access.For(caller).Require(access.Maintenance, access.View); err != nil {
		return nil, err
	}
	var stats dto.MaintenanceStatsResponse
	counts := []struct {
		dst    *int64
		status string
	}{
		{&stats.Pending, model.MaintenancePending},
		{&stats.InProgress, model.MaintenanceInProgress},
		{&stats.Resolved, model.MaintenanceResolved},
		{&stats.Rejected, model.MaintenanceRejected},
	}
	for _, c := range counts {
		n, err := s.repo.Maintenance.Count(ctx, repository.Eq("status", c.status))
		if err != nil {
			s.logger.Error("统计维修工单失败", zap.String("status", c.status), zap.Error(err))
			return nil, err
		}
		*c.dst = n
		stats.Total += n
	}
	return &stats, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func toMaintenanceResponse(m *model.MaintenanceRequest) *dto.MaintenanceResponse {
	return &dto.MaintenanceResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Location:    m.Location,
		Priority:    m.Priority,
		Status:      m.Status,
		ReportedBy:  m.ReportedBy,
		AssignedTo:  m.AssignedTo,
		ResolvedAt:  m.ResolvedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
