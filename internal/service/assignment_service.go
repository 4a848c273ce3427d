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

// ── 作业模块业务错误 ──

var (
	ErrAssignmentNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "作业不存在")
	ErrSubmissionNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "提交记录不存在")
	ErrAlreadySubmitted   = pkgerrors.New(pkgerrors.ErrConflict, "已提交过该作业")
	ErrSubmissionClosed   = pkgerrors.New(pkgerrors.ErrValidation, "作业已截止，无法提交")
	ErrMarksOutOfRange    = pkgerrors.New(pkgerrors.ErrRange, "分数超出范围")
)

// 作业在列表中的展示状态（依查看者而定）
const (
	AssignmentStatusSubmitted = "Submitted"
	AssignmentStatusOverdue   = "Overdue"
	AssignmentStatusPending   = "Pending"
	AssignmentStatusActive    = "Active"
)

// AssignmentService 作业业务接口
type AssignmentService interface {
	Create(ctx context.Context, caller access.Identity, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	List(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.AssignmentResponse, int64, error)
	// Get 学生只看到自己的提交，教师看到全部提交
	Get(ctx context.Context, caller access.Identity, id string) (*dto.AssignmentResponse, error)
	Submit(ctx context.Context, caller access.Identity, assignmentID string, req *dto.SubmitAssignmentRequest) (*dto.SubmissionResponse, error)
	Grade(ctx context.Context, caller access.Identity, submissionID string, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error)
	Stats(ctx context.Context, caller access.Identity) (*dto.AssignmentStatsResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, caller access.Identity, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if err := access.For(caller).Require(access.Assignments, access.Create); err != nil {
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
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.MaxMarks <= 0 {
		return nil, pkgerrors.Validation("max_marks", "满分必须大于 0")
	}

	a := &model.Assignment{
		Title:       title,
		Subject:     defaultString(req.Subject, "Mathematics"),
		Description: description,
		DueDate:     due,
		MaxMarks:    req.MaxMarks,
		FacultyID:   caller.ID,
		AssignedBy:  caller.Name,
	}
	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("布置作业", zap.String("id", a.ID), zap.String("faculty_id", caller.ID))
	return s.toAssignmentResponse(a, caller, nil, 0), nil
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.AssignmentResponse, int64, error) {
	if err := access.For(caller).Require(access.Assignments, access.View); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.Assignment.List(ctx, listQuery(req))
	if err != nil {
		s.logger.Error("列出作业失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(items))
	for i := range items {
		a := &items[i]
		subs, count, err := s.visibleSubmissions(ctx, caller, a.ID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *s.toAssignmentResponse(a, caller, subs, count))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *assignmentService) Get(ctx context.Context, caller access.Identity, id string) (*dto.AssignmentResponse, error) {
	if err := access.For(caller).Require(access.Assignments, access.View); err != nil {
		return nil, err
	}
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, count, err := s.visibleSubmissions(ctx, caller, a.ID)
	if err != nil {
		return nil, err
	}
	resp := s.toAssignmentResponse(a, caller, subs, count)
	resp.Submissions = make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		resp.Submissions = append(resp.Submissions, toSubmissionResponse(&subs[i]))
	}
	return resp, nil
}

// visibleSubmissions 学生只返回自己的提交；count 为该作业的提交总数
func (s *assignmentService) visibleSubmissions(ctx context.Context, caller access.Identity, assignmentID string) ([]model.Submission, int64, error) {
	var scopes []repository.Scope
	if !caller.IsFaculty() {
		scopes = append(scopes, repository.Eq("student_id", caller.ID))
	}
	subs, err := s.repo.Submission.ListByParent(ctx, assignmentID, scopes...)
	if err != nil {
		s.logger.Error("查询提交失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, 0, err
	}
	count, err := s.repo.Submission.CountByParent(ctx, assignmentID)
	if err != nil {
		s.logger.Error("统计提交失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, 0, err
	}
	return subs, count, nil
}

// ────────────────────── Submit ──────────────────────

func (s *assignmentService) Submit(ctx context.Context, caller access.Identity, assignmentID string, req *dto.SubmitAssignmentRequest) (*dto.SubmissionResponse, error) {
	if err := access.For(caller).Require(access.Assignments, access.Submit); err != nil {
		return nil, err
	}
	content, err := requireText("content", req.Content)
	if err != nil {
		return nil, err
	}
	a, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if daysBetween(s.now(), a.DueDate) < 0 {
		return nil, ErrSubmissionClosed
	}

	existing, err := s.repo.Submission.ListByParent(ctx, assignmentID, repository.Eq("student_id", caller.ID))
	if err != nil {
		s.logger.Error("查询提交失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadySubmitted
	}

	sub := &model.Submission{
		StudentID:   caller.ID,
		StudentName: caller.Name,
		Content:     content,
		Status:      model.SubmissionSubmitted,
	}
	if url := strings.TrimSpace(req.FileURL); url != "" {
		sub.FileURL = &url
	}
	if err := s.repo.Submission.Append(ctx, assignmentID, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		s.logger.Error("保存提交失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	resp := toSubmissionResponse(sub)
	return &resp, nil
}

// ────────────────────── Grade ──────────────────────

func (s *assignmentService) Grade(ctx context.Context, caller access.Identity, submissionID string, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	if err := access.For(caller).Require(access.Assignments, access.Grade); err != nil {
		return nil, err
	}
	if req.Marks == nil {
		return nil, pkgerrors.Validation("marks", "不能为空")
	}

	sub, err := s.repo.Submission.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("id", submissionID), zap.Error(err))
		return nil, err
	}
	a, err := s.getAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	marks := *req.Marks
	if marks < 0 || marks > float64(a.MaxMarks) {
		return nil, fmt.Errorf("%w: %v 不在 0-%d 之间", ErrMarksOutOfRange, marks, a.MaxMarks)
	}

	now := s.now()
	graderID := caller.ID
	updated, err := s.repo.Submission.Update(ctx, submissionID, func(sub *model.Submission) error {
		sub.Marks = &marks
		sub.Feedback = strings.TrimSpace(req.Feedback)
		sub.Status = model.SubmissionGraded
		sub.GradedBy = &graderID
		sub.GradedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("批改失败", zap.String("id", submissionID), zap.Error(err))
		return nil, err
	}

	resp := toSubmissionResponse(updated)
	return &resp, nil
}

// ────────────────────── Stats ──────────────────────

func (s *assignmentService) Stats(ctx context.Context, caller access.Identity) (*dto.AssignmentStatsResponse, error) {
	if err := access.For(caller).Require(access.Assignments, access.Grade); err != nil {
		return nil, err
	}
	var stats dto.AssignmentStatsResponse
	var err error
	if stats.TotalAssignments, err = s.repo.Assignment.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalSubmissions, err = s.repo.Submission.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingReview, err = s.repo.Submission.Count(ctx, repository.Eq("status", model.SubmissionSubmitted)); err != nil {
		return nil, err
	}
	if stats.Graded, err = s.repo.Submission.Count(ctx, repository.Eq("status", model.SubmissionGraded)); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ── 内部辅助 ──

func (s *assignmentService) getAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// viewerStatus 学生：Submitted / Overdue / Pending；教师：Overdue / Active
func viewerStatus(caller access.Identity, daysRemaining int, hasSubmitted bool) string {
	overdue := daysRemaining < 0
	if caller.IsFaculty() {
		if overdue {
			return AssignmentStatusOverdue
		}
		return AssignmentStatusActive
	}
	switch {
	case hasSubmitted:
		return AssignmentStatusSubmitted
	case overdue:
		return AssignmentStatusOverdue
	default:
		return AssignmentStatusPending
	}
}

func (s *assignmentService) toAssignmentResponse(a *model.Assignment, caller access.Identity, visible []model.Submission, count int64) *dto.AssignmentResponse {
	days := daysBetween(s.now(), a.DueDate)
	return &dto.AssignmentResponse{
		ID:              a.ID,
		Title:           a.Title,
		Subject:         a.Subject,
		Description:     a.Description,
		DueDate:         a.DueDate.Format(dateLayout),
		MaxMarks:        a.MaxMarks,
		AssignedBy:      a.AssignedBy,
		Status:          viewerStatus(caller, days, !caller.IsFaculty() && len(visible) > 0),
		DaysRemaining:   days,
		SubmissionCount: count,
		CreatedAt:       a.CreatedAt,
	}
}

func toSubmissionResponse(sub *model.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		StudentName:  sub.StudentName,
		Content:      sub.Content,
		FileURL:      optionalString(sub.FileURL),
		Status:       sub.Status,
		Marks:        sub.Marks,
		Feedback:     sub.Feedback,
		GradedAt:     sub.GradedAt,
		SubmittedAt:  sub.SubmittedAt,
	}
}
