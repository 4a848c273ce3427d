package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ── 学费模块业务错误 ──

var (
	ErrFeeOverpaid = pkgerrors.New(pkgerrors.ErrRange, "已付金额不能超过应付金额")
)

// FeeService 学费查询与记账；状态由已付金额派生，不接入支付
type FeeService interface {
	// Summary studentID 为空时查看本人，查看他人需要 view_all
	Summary(ctx context.Context, caller access.Identity, studentID string) (*dto.FeeSummaryResponse, error)
	Create(ctx context.Context, caller access.Identity, req *dto.CreateFeeRequest) (*dto.FeeResponse, error)
}

type feeService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewFeeService 创建 FeeService 实例
func NewFeeService(repo *repository.Repository, logger *zap.Logger) FeeService {
	return &feeService{repo: repo, logger: logger, now: time.Now}
}

func (s *feeService) Summary(ctx context.Context, caller access.Identity, studentID string) (*dto.FeeSummaryResponse, error) {
	caps := access.For(caller)
	if err := caps.Require(access.Fees, access.View); err != nil {
		return nil, err
	}
	if studentID == "" || studentID == caller.ID {
		studentID = caller.ID
	} else if err := caps.Require(access.Fees, access.ViewAll); err != nil {
		return nil, err
	}

	fees, _, err := s.repo.Fee.List(ctx, repository.Query{Scopes: []repository.Scope{repository.Eq("student_id", studentID)}})
	if err != nil {
		s.logger.Error("查询费用失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := &dto.FeeSummaryResponse{StudentID: studentID, Fees: make([]dto.FeeResponse, 0, len(fees))}
	for i := range fees {
		f := &fees[i]
		resp.TotalFees += f.Amount
		resp.TotalPaid += f.PaidAmount
		resp.Outstanding += f.Outstanding()
		resp.Fees = append(resp.Fees, toFeeResponse(f))
	}
	resp.TotalFees = roundMoney(resp.TotalFees)
	resp.TotalPaid = roundMoney(resp.TotalPaid)
	resp.Outstanding = roundMoney(resp.Outstanding)
	return resp, nil
}

func (s *feeService) Create(ctx context.Context, caller access.Identity, req *dto.CreateFeeRequest) (*dto.FeeResponse, error) {
	if err := access.For(caller).Require(access.Fees, access.Create); err != nil {
		return nil, err
	}
	feeType, err := requireText("type", req.Type)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, pkgerrors.Validation("amount", "必须大于 0")
	}
	if req.PaidAmount < 0 {
		return nil, pkgerrors.Validation("paid_amount", "不能为负数")
	}
	if req.PaidAmount > req.Amount {
		return nil, ErrFeeOverpaid
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	fee := &model.Fee{
		StudentID:  student.ID,
		Type:       feeType,
		Semester:   defaultString(req.Semester, "Current"),
		Amount:     req.Amount,
		PaidAmount: req.PaidAmount,
		DueDate:    due,
	}
	if fee.PaidAmount >= fee.Amount {
		now := s.now()
		fee.PaidAt = &now
	}
	if err := s.repo.Fee.Create(ctx, fee); err != nil {
		s.logger.Error("新增费用失败", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增费用条目",
		zap.String("fee_id", fee.ID),
		zap.String("student_id", student.ID),
		zap.Float64("amount", fee.Amount),
	)
	resp := toFeeResponse(fee)
	return &resp, nil
}

func toFeeResponse(f *model.Fee) dto.FeeResponse {
	return dto.FeeResponse{
		ID:          f.ID,
		Type:        f.Type,
		Semester:    f.Semester,
		Amount:      f.Amount,
		PaidAmount:  f.PaidAmount,
		Outstanding: roundMoney(f.Outstanding()),
		Status:      f.Status(),
		DueDate:     f.DueDate.Format(dateLayout),
		PaidAt:      f.PaidAt,
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
