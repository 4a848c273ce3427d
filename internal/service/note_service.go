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

// ── 笔记模块业务错误 ──

var (
	ErrNoteNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "笔记不存在")
)

// NoteService 笔记业务接口
type NoteService interface {
	Create(ctx context.Context, caller access.Identity, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	List(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.NoteResponse, int64, error)
	// Get 返回笔记详情并累加浏览次数
	Get(ctx context.Context, caller access.Identity, id string) (*dto.NoteResponse, error)
}

type noteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(repo *repository.Repository, logger *zap.Logger) NoteService {
	return &noteService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *noteService) Create(ctx context.Context, caller access.Identity, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if err := access.For(caller).Require(access.Notes, access.Create); err != nil {
		return nil, err
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	subject, err := requireText("subject", req.Subject)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		Title:       title,
		Subject:     subject,
		Description: req.Description,
		Content:     req.Content,
		FileType:    defaultString(req.FileType, "PDF"),
		Tags:        model.ParseStringList(req.Tags),
		UploadedBy:  caller.ID,
		AuthorName:  caller.Name,
		AuthorRole:  string(caller.Role),
	}
	if err := s.repo.Note.Create(ctx, note); err != nil {
		s.logger.Error("创建笔记失败", zap.Error(err))
		return nil, err
	}
	return toNoteResponse(note, true), nil
}

// ────────────────────── List ──────────────────────

func (s *noteService) List(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.NoteResponse, int64, error) {
	if err := access.For(caller).Require(access.Notes, access.View); err != nil {
		return nil, 0, err
	}
	notes, total, err := s.repo.Note.List(ctx, listQuery(req))
	if err != nil {
		s.logger.Error("列出笔记失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		result = append(result, *toNoteResponse(&notes[i], false))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *noteService) Get(ctx context.Context, caller access.Identity, id string) (*dto.NoteResponse, error) {
	if err := access.For(caller).Require(access.Notes, access.View); err != nil {
		return nil, err
	}
	note, err := s.repo.Note.Update(ctx, id, func(n *model.Note) error {
		n.Views++
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("查询笔记失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toNoteResponse(note, true), nil
}

func toNoteResponse(n *model.Note, withContent bool) *dto.NoteResponse {
	resp := &dto.NoteResponse{
		ID:          n.ID,
		Title:       n.Title,
		Subject:     n.Subject,
		Description: n.Description,
		FileType:    n.FileType,
		Tags:        []string(n.Tags),
		Views:       n.Views,
		Author:      n.AuthorName,
		AuthorRole:  n.AuthorRole,
		UploadedBy:  n.UploadedBy,
		CreatedAt:   n.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if withContent {
		resp.Content = n.Content
	}
	return resp
}
