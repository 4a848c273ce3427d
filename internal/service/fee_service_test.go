package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func TestFeeService_CreateAndSummary(t *testing.T) {
	svc := NewFeeService(newTestRepo(), nop).(*feeService)
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.Local)
	svc.now = fixedClock(now)
	ctx := context.Background()

	reqs := []dto.CreateFeeRequest{
		{StudentID: "1", Type: "Tuition", Semester: "Spring 2026", Amount: 50000, PaidAmount: 50000, DueDate: "2026-01-31"},
		{StudentID: "1", Type: "Hostel", Amount: 20000, PaidAmount: 5000.5, DueDate: "2026-02-15"},
		{StudentID: "1", Type: "Library", Amount: 1000, DueDate: "2026-03-01"},
	}
	var created []*dto.FeeResponse
	for i := range reqs {
		f, err := svc.Create(ctx, facultyIdentity(), &reqs[i])
		if err != nil {
			t.Fatalf("新增费用失败: %v", err)
		}
		created = append(created, f)
	}

	if created[0].Status != model.FeePaid || created[0].PaidAt == nil || !created[0].PaidAt.Equal(now) {
		t.Errorf("全额支付应为 Paid 且记录时间: %+v", created[0])
	}
	if created[1].Status != model.FeePartial || created[1].Semester != "Current" || created[1].Outstanding != 14999.5 {
		t.Errorf("部分支付错误: %+v", created[1])
	}
	if created[2].Status != model.FeePending || created[2].PaidAt != nil {
		t.Errorf("未支付应为 Pending: %+v", created[2])
	}

	sum, err := svc.Summary(ctx, studentIdentity(), "")
	if err != nil {
		t.Fatalf("Summary 失败: %v", err)
	}
	if sum.TotalFees != 71000 || sum.TotalPaid != 55000.5 || sum.Outstanding != 15999.5 || len(sum.Fees) != 3 {
		t.Errorf("汇总错误: %+v", sum)
	}

	// 其他学生看不到这些费用
	other, _ := svc.Summary(ctx, otherStudentIdentity(), "")
	if len(other.Fees) != 0 {
		t.Errorf("期望其他学生无费用，实际=%d", len(other.Fees))
	}
}

func TestFeeService_Errors(t *testing.T) {
	svc := NewFeeService(newTestRepo(), nop)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller func() error
		want   error
	}{
		{"超额支付", func() error {
			_, err := svc.Create(ctx, facultyIdentity(), &dto.CreateFeeRequest{StudentID: "1", Type: "Exam", Amount: 100, PaidAmount: 101, DueDate: "2026-01-01"})
			return err
		}, pkgerrors.ErrRange},
		{"金额为 0", func() error {
			_, err := svc.Create(ctx, facultyIdentity(), &dto.CreateFeeRequest{StudentID: "1", Type: "Exam", DueDate: "2026-01-01"})
			return err
		}, pkgerrors.ErrValidation},
		{"学生无权记账", func() error {
			_, err := svc.Create(ctx, studentIdentity(), &dto.CreateFeeRequest{StudentID: "1", Type: "Exam", Amount: 100, DueDate: "2026-01-01"})
			return err
		}, pkgerrors.ErrForbidden},
		{"学生不存在", func() error {
			_, err := svc.Create(ctx, facultyIdentity(), &dto.CreateFeeRequest{StudentID: "404", Type: "Exam", Amount: 100, DueDate: "2026-01-01"})
			return err
		}, ErrStudentNotFound},
		{"学生查看他人费用", func() error {
			_, err := svc.Summary(ctx, studentIdentity(), "3")
			return err
		}, pkgerrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.caller(); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}
