package service

import (
	"context"
	"errors"
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

// ── 证书模块业务错误 ──

var (
	ErrCertificateNotFound        = pkgerrors.New(pkgerrors.ErrNotFound, "证书不存在")
	ErrCertificateUnavailable     = pkgerrors.New(pkgerrors.ErrValidation, "该证书暂不可申请")
	ErrCertificateRequestNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "证书申请不存在")
	ErrCertificateAlreadyHandled  = pkgerrors.New(pkgerrors.ErrConflict, "证书申请已处理")
)

// CertificateService 证书目录、申请与处理
type CertificateService interface {
	Catalog(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.CertificateResponse, int64, error)
	Request(ctx context.Context, caller access.Identity, req *dto.RequestCertificateRequest) (*dto.CertificateRequestResponse, error)
	// ListRequests 学生只看到自己的申请，教师看到全部
	ListRequests(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.CertificateRequestResponse, int64, error)
	// Process Processing → Completed | Rejected，完成时记录生成时间
	Process(ctx context.Context, caller access.Identity, requestID string, req *dto.ProcessCertificateRequest) (*dto.CertificateRequestResponse, error)
}

type certificateService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCertificateService 创建 CertificateService 实例
func NewCertificateService(repo *repository.Repository, logger *zap.Logger) CertificateService {
	return &certificateService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Catalog ──────────────────────

func (s *certificateService) Catalog(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.CertificateResponse, int64, error) {
	if err := access.For(caller).Require(access.Certificates, access.View); err != nil {
		return nil, 0, err
	}
	certs, total, err := s.repo.Certificate.List(ctx, listQuery(req))
	if err != nil {
		s.logger.Error("查询证书目录失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CertificateResponse, 0, len(certs))
	for i := range certs {
		result = append(result, toCertificateResponse(&certs[i]))
	}
	return result, total, nil
}

// ────────────────────── Request ──────────────────────

func (s *certificateService) Request(ctx context.Context, caller access.Identity, req *dto.RequestCertificateRequest) (*dto.CertificateRequestResponse, error) {
	if err := access.For(caller).Require(access.Certificates, access.Request); err != nil {
		return nil, err
	}
	cert, err := s.repo.Certificate.Get(ctx, strings.TrimSpace(req.CertificateID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		s.logger.Error("查询证书失败", zap.String("certificate_id", req.CertificateID), zap.Error(err))
		return nil, err
	}
	if !cert.Available {
		return nil, ErrCertificateUnavailable
	}

	cr := &model.CertificateRequest{
		CertificateID: cert.ID,
		Certificate:   cert.Name,
		StudentID:     caller.ID,
		StudentName:   caller.Name,
		Status:        model.CertificateProcessing,
	}
	if err := s.repo.CertificateRequest.Create(ctx, cr); err != nil {
		s.logger.Error("提交证书申请失败", zap.String("certificate_id", cert.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("证书申请已提交",
		zap.String("request_id", cr.ID),
		zap.String("certificate", cert.Name),
		zap.String("student_id", caller.ID),
	)
	return toCertificateRequestResponse(cr), nil
}

// ────────────────────── ListRequests ──────────────────────

func (s *certificateService) ListRequests(ctx context.Context, caller access.Identity, req *dto.ListRequest) ([]dto.CertificateRequestResponse, int64, error) {
	caps := access.For(caller)
	if err := caps.Require(access.Certificates, access.View); err != nil {
		return nil, 0, err
	}
	var scopes []repository.Scope
	if !caps.Can(access.Certificates, access.Process) {
		scopes = append(scopes, repository.Eq("student_id", caller.ID))
	}

	items, total, err := s.repo.CertificateRequest.List(ctx, listQuery(req, scopes...))
	if err != nil {
		s.logger.Error("查询证书申请失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CertificateRequestResponse, 0, len(items))
	for i := range items {
		result = append(result, *toCertificateRequestResponse(&items[i]))
	}
	return result, total, nil
}

// ────────────────────── Process ──────────────────────

func (s *certificateService) Process(ctx context.Context, caller access.Identity, requestID string, req *dto.ProcessCertificateRequest) (*dto.CertificateRequestResponse, error) {
	if err := access.For(caller).Require(access.Certificates, access.Process); err != nil {
		return nil, err
	}
	switch req.Status {
	case model.CertificateCompleted, model.CertificateRejected:
	default:
		return nil, pkgerrors.Validation("status", "仅支持 Completed 或 Rejected")
	}

	updated, err := s.repo.CertificateRequest.Update(ctx, requestID, func(cr *model.CertificateRequest) error {
		if cr.Status != model.CertificateProcessing {
			return ErrCertificateAlreadyHandled
		}
		cr.Status = req.Status
		if req.Status == model.CertificateCompleted {
			now := s.now()
			cr.GeneratedAt = &now
			if url := strings.TrimSpace(req.FileURL); url != "" {
				cr.FileURL = &url
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateRequestNotFound
		}
		if errors.Is(err, ErrCertificateAlreadyHandled) {
			return nil, err
		}
		s.logger.Error("处理证书申请失败", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("证书申请已处理",
		zap.String("request_id", requestID),
		zap.String("status", updated.Status),
		zap.String("operator", caller.ID),
	)
	return toCertificateRequestResponse(updated), nil
}

func toCertificateResponse(c *model.Certificate) dto.CertificateResponse {
	return dto.CertificateResponse{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Type:              c.Type,
		Fee:               c.Fee,
		ProcessingTime:    c.ProcessingTime,
		Available:         c.Available,
		UnavailableReason: c.UnavailableReason,
	}
}

func toCertificateRequestResponse(r *model.CertificateRequest) *dto.CertificateRequestResponse {
	return &dto.CertificateRequestResponse{
		ID:            r.ID,
		CertificateID: r.CertificateID,
		Certificate:   r.Certificate,
		StudentID:     r.StudentID,
		StudentName:   r.StudentName,
		Status:        r.Status,
		FileURL:       optionalString(r.FileURL),
		GeneratedAt:   r.GeneratedAt,
		RequestedAt:   r.CreatedAt,
	}
}
