package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ── 答疑模块业务错误 ──

var (
	ErrDoubtNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "问题不存在")
)

// DoubtService 答疑业务接口
type DoubtService interface {
	Create(ctx context.Context, caller access.Identity, req *dto.CreateDoubtRequest) (*dto.DoubtResponse, error)
	List(ctx context.Context, caller access.Identity, req *dto.DoubtListRequest) ([]dto.DoubtResponse, int64, error)
	// Get 返回问题及按时间顺序排列的全部回复
	Get(ctx context.Context, caller access.Identity, id string) (*dto.DoubtResponse, error)
	Reply(ctx context.Context, caller access.Identity, doubtID string, req *dto.ReplyDoubtRequest) (*dto.ReplyResponse, error)
	// SetResolved 仅教师可标记
	SetResolved(ctx context.Context, caller access.Identity, doubtID string, resolved bool) (*dto.DoubtResponse, error)
}

type doubtService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDoubtService 创建 DoubtService 实例
func NewDoubtService(repo *repository.Repository, logger *zap.Logger) DoubtService {
	return &doubtService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *doubtService) Create(ctx context.Context, caller access.Identity, req *dto.CreateDoubtRequest) (*dto.DoubtResponse, error) {
	if err := access.For(caller).Require(access.Doubts, access.Create); err != nil {
		return nil, err
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	question, err := requireText("question", req.Question)
	if err != nil {
		return nil, err
	}

	d := &model.Doubt{
		Title:      title,
		Question:   question,
		Subject:    defaultString(req.Subject, "General"),
		StudentID:  caller.ID,
		AuthorName: caller.Name,
		AuthorRole: string(caller.Role),
	}
	if err := s.repo.Doubt.Create(ctx, d); err != nil {
		s.logger.Error("创建问题失败", zap.Error(err))
		return nil, err
	}
	return toDoubtResponse(d, 0), nil
}

// ────────────────────── List ──────────────────────

func (s *doubtService) List(ctx context.Context, caller access.Identity, req *dto.DoubtListRequest) ([]dto.DoubtResponse, int64, error) {
	if err := access.For(caller).Require(access.Doubts, access.View); err != nil {
		return nil, 0, err
	}
	var scopes []repository.Scope
	if req.Resolved != nil {
		scopes = append(scopes, repository.Eq("resolved", *req.Resolved))
	}
	doubts, total, err := s.repo.Doubt.List(ctx, listQuery(&req.ListRequest, scopes...))
	if err != nil {
		s.logger.Error("列出问题失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DoubtResponse, 0, len(doubts))
	for i := range doubts {
		n, err := s.repo.DoubtReply.CountByParent(ctx, doubts[i].ID)
		if err != nil {
			s.logger.Error("统计回复失败", zap.String("doubt_id", doubts[i].ID), zap.Error(err))
			return nil, 0, err
		}
		result = append(result, *toDoubtResponse(&doubts[i], n))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *doubtService) Get(ctx context.Context, caller access.Identity, id string) (*dto.DoubtResponse, error) {
	if err := access.For(caller).Require(access.Doubts, access.View); err != nil {
		return nil, err
	}
	d, err := s.getDoubt(ctx, id)
	if err != nil {
		return nil, err
	}
	replies, err := s.repo.DoubtReply.ListByParent(ctx, id)
	if err != nil {
		s.logger.Error("查询回复失败", zap.String("doubt_id", id), zap.Error(err))
		return nil, err
	}

	resp := toDoubtResponse(d, int64(len(replies)))
	resp.Replies = make([]dto.ReplyResponse, 0, len(replies))
	for i := range replies {
		resp.Replies = append(resp.Replies, toReplyResponse(&replies[i]))
	}
	return resp, nil
}

// ────────────────────── Reply ──────────────────────

func (s *doubtService) Reply(ctx context.Context, caller access.Identity, doubtID string, req *dto.ReplyDoubtRequest) (*dto.ReplyResponse, error) {
	if err := access.For(caller).Require(access.Doubts, access.Reply); err != nil {
		return nil, err
	}
	text, err := requireText("reply", req.Reply)
	if err != nil {
		return nil, err
	}
	if _, err := s.getDoubt(ctx, doubtID); err != nil {
		return nil, err
	}

	r := &model.DoubtReply{
		RepliedBy:  caller.ID,
		AuthorName: caller.Name,
		AuthorRole: string(caller.Role),
		Reply:      text,
	}
	if err := s.repo.DoubtReply.Append(ctx, doubtID, r); err != nil {
		s.logger.Error("保存回复失败", zap.String("doubt_id", doubtID), zap.Error(err))
		return nil, err
	}
	resp := toReplyResponse(r)
	return &resp, nil
}

// ────────────────────── SetResolved ──────────────────────

func (s *doubtService) SetResolved(ctx context.Context, caller access.Identity, doubtID string, resolved bool) (*dto.DoubtResponse, error) {
	if err := access.For(caller).Require(access.Doubts, access.Resolve); err != nil {
		return nil, err
	}
	d, err := s.repo.Doubt.Update(ctx, doubtID, func(d *model.Doubt) error {
		d.Resolved = resolved
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		s.logger.Error("更新问题状态失败", zap.String("id", doubtID), zap.Error(err))
		return nil, err
	}
	n, err := s.repo.DoubtReply.CountByParent(ctx, doubtID)
	if err != nil {
		return nil, err
	}
	return toDoubtResponse(d, n), nil
}

func (s *doubtService) getDoubt(ctx context.Context, id string) (*model.Doubt, error) {
	d, err := s.repo.Doubt.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		s.logger.Error("查询问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return d, nil
}

func toDoubtResponse(d *model.Doubt, replies int64) *dto.DoubtResponse {
	return &dto.DoubtResponse{
		ID:         d.ID,
		Title:      d.Title,
		Question:   d.Question,
		Subject:    d.Subject,
		Author:     d.AuthorName,
		AuthorRole: d.AuthorRole,
		Resolved:   d.Resolved,
		ReplyCount: replies,
		CreatedAt:  d.CreatedAt,
	}
}

func toReplyResponse(r *model.DoubtReply) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:         r.ID,
		Author:     r.AuthorName,
		AuthorRole: r.AuthorRole,
		Reply:      r.Reply,
		CreatedAt:  r.CreatedAt,
	}
}
