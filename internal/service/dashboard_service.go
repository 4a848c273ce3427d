package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// DashboardService 首页快捷统计
type DashboardService interface {
	Overview(ctx context.Context, caller access.Identity) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger, now: time.Now}
}

// Overview 各项统计并发查询，任一失败即整体失败
func (s *dashboardService) Overview(ctx context.Context, caller access.Identity) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{
		Role:     string(caller.Role),
		Greeting: greeting(caller.Name),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var scopes []repository.Scope
		if caller.IsFaculty() {
			scopes = append(scopes, repository.Eq("uploaded_by", caller.ID))
		}
		n, err := s.repo.Note.Count(gctx, scopes...)
		resp.NotesShared = n
		return err
	})

	g.Go(func() error {
		var scopes []repository.Scope
		if caller.IsStudent() {
			scopes = append(scopes, repository.Eq("student_id", caller.ID))
		}
		n, err := s.repo.Doubt.Count(gctx, append(scopes, repository.Eq("resolved", false))...)
		resp.OpenDoubts = n
		return err
	})

	g.Go(func() error {
		var scopes []repository.Scope
		if caller.IsStudent() {
			scopes = append(scopes, repository.Eq("student_id", caller.ID))
		}
		n, err := s.repo.Maintenance.Count(gctx, append(scopes, repository.Eq("status", model.MaintenancePending))...)
		resp.PendingRepairs = n
		return err
	})

	if caller.IsStudent() {
		g.Go(func() error {
			n, err := s.dueThisWeek(gctx, caller.ID)
			resp.DueThisWeek = n
			return err
		})
		g.Go(func() error {
			records, _, err := s.repo.Attendance.List(gctx, repository.Query{Scopes: []repository.Scope{repository.Eq("student_id", caller.ID)}})
			if err != nil {
				return err
			}
			var attended, total int
			for _, r := range records {
				attended += r.AttendedClasses
				total += r.TotalClasses
			}
			rate := model.RoundPercent(attended, total)
			resp.AttendanceRate = &rate
			return nil
		})
		g.Go(func() error {
			fees, _, err := s.repo.Fee.List(gctx, repository.Query{Scopes: []repository.Scope{repository.Eq("student_id", caller.ID)}})
			if err != nil {
				return err
			}
			var outstanding float64
			for i := range fees {
				outstanding += fees[i].Outstanding()
			}
			outstanding = roundMoney(outstanding)
			resp.Outstanding = &outstanding
			return nil
		})
	} else {
		g.Go(func() error {
			n, err := s.repo.Submission.Count(gctx, repository.Eq("status", model.SubmissionSubmitted))
			resp.PendingReview = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("汇总首页数据失败", zap.String("user_id", caller.ID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// dueThisWeek 7 天内截止且本人尚未提交的作业数
func (s *dashboardService) dueThisWeek(ctx context.Context, studentID string) (int64, error) {
	assignments, _, err := s.repo.Assignment.List(ctx, repository.Query{})
	if err != nil {
		return 0, err
	}
	now := s.now()
	var n int64
	for _, a := range assignments {
		days := daysBetween(now, a.DueDate)
		if days < 0 || days > 7 {
			continue
		}
		mine, err := s.repo.Submission.ListByParent(ctx, a.ID, repository.Eq("student_id", studentID))
		if err != nil {
			return 0, err
		}
		if len(mine) == 0 {
			n++
		}
	}
	return n, nil
}

func greeting(name string) string {
	first := strings.Fields(name)
	if len(first) == 0 {
		return "Welcome back!"
	}
	return "Welcome back, " + first[0] + "!"
}
