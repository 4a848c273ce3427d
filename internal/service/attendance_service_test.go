package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func boolPtr(v bool) *bool { return &v }

func TestAttendanceStatus(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89.9, "Good"},
		{80, "Good"},
		{79.9, "Warning"},
		{75, "Warning"},
		{74.9, "Critical"},
		{0, "Critical"},
	}
	for _, tt := range tests {
		if got := AttendanceStatus(tt.pct); got != tt.want {
			t.Errorf("AttendanceStatus(%v)=%s，期望 %s", tt.pct, got, tt.want)
		}
	}
}

func setupTestAttendanceService(now time.Time) *attendanceService {
	svc := NewAttendanceService(newTestRepo(), nop).(*attendanceService)
	svc.now = fixedClock(now)
	return svc
}

func TestAttendanceService_Record(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	svc := setupTestAttendanceService(now)
	ctx := context.Background()

	first, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics", Present: boolPtr(true)})
	if err != nil {
		t.Fatalf("首次记录失败: %v", err)
	}
	if first.TotalClasses != 1 || first.AttendedClasses != 1 || first.LastAttended != "2026-03-10" || first.Teacher != "Dr. Anjali Verma" {
		t.Errorf("首次记录结果错误: %+v", first)
	}

	second, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics", Present: boolPtr(false), Date: "2026-03-11"})
	if err != nil {
		t.Fatalf("第二次记录失败: %v", err)
	}
	if second.TotalClasses != 2 || second.AttendedClasses != 1 || second.Percentage != 50 {
		t.Errorf("缺勤应只累加总课时: %+v", second)
	}
	if second.LastAttended != "2026-03-10" {
		t.Errorf("缺勤不应更新最近出勤日期，实际=%s", second.LastAttended)
	}
	if second.Status != "Critical" {
		t.Errorf("期望 Critical，实际=%s", second.Status)
	}
}

func TestAttendanceService_Record_Errors(t *testing.T) {
	svc := setupTestAttendanceService(time.Now())
	ctx := context.Background()

	tests := []struct {
		name   string
		caller func() error
		want   error
	}{
		{"学生无权记录", func() error {
			_, err := svc.Record(ctx, studentIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics", Present: boolPtr(true)})
			return err
		}, pkgerrors.ErrForbidden},
		{"学生不存在", func() error {
			_, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "99", Subject: "Physics", Present: boolPtr(true)})
			return err
		}, ErrStudentNotFound},
		{"目标是教师", func() error {
			_, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "4", Subject: "Physics", Present: boolPtr(true)})
			return err
		}, ErrStudentNotFound},
		{"缺少 present", func() error {
			_, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics"})
			return err
		}, pkgerrors.ErrValidation},
		{"日期格式错误", func() error {
			_, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics", Present: boolPtr(true), Date: "10/03/2026"})
			return err
		}, pkgerrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.caller(); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestAttendanceService_SummaryAndRoster(t *testing.T) {
	svc := setupTestAttendanceService(time.Now())
	ctx := context.Background()

	record := func(student, subject string, present bool) {
		t.Helper()
		if _, err := svc.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: student, Subject: subject, Present: boolPtr(present)}); err != nil {
			t.Fatalf("记录失败: %v", err)
		}
	}
	// 学生 1：Physics 2/2，Chemistry 1/2 → 3/4 = 75%
	record("1", "Physics", true)
	record("1", "Physics", true)
	record("1", "Chemistry", true)
	record("1", "Chemistry", false)
	// 学生 3：Physics 0/1
	record("3", "Physics", false)

	sum, err := svc.Summary(ctx, studentIdentity(), "")
	if err != nil {
		t.Fatalf("Summary 失败: %v", err)
	}
	if sum.Overall != 75 || sum.Status != "Warning" || sum.TotalClasses != 4 {
		t.Errorf("汇总错误: %+v", sum)
	}
	if len(sum.Subjects) != 2 || sum.Subjects[0].Subject != "Chemistry" {
		t.Errorf("科目应按名称排序: %+v", sum.Subjects)
	}

	// 学生查看他人出勤被拒绝
	if _, err := svc.Summary(ctx, studentIdentity(), "3"); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("期望 Forbidden，实际: %v", err)
	}
	other, err := svc.Summary(ctx, facultyIdentity(), "3")
	if err != nil || other.StudentName != "Rohan Gupta" || other.Overall != 0 {
		t.Errorf("教师查看学生出勤错误: %+v err=%v", other, err)
	}
	if _, err := svc.Summary(ctx, facultyIdentity(), "99"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}

	roster, err := svc.Roster(ctx, facultyIdentity())
	if err != nil {
		t.Fatalf("Roster 失败: %v", err)
	}
	if len(roster) != 2 || roster[0].StudentName != "Priya Sharma" || roster[1].Status != "Critical" {
		t.Errorf("Roster 错误: %+v", roster)
	}
	if _, err := svc.Roster(ctx, studentIdentity()); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("学生查看 Roster 应返回 Forbidden，实际: %v", err)
	}
}

func TestAttendanceService_EmptySummary(t *testing.T) {
	svc := setupTestAttendanceService(time.Now())

	sum, err := svc.Summary(context.Background(), studentIdentity(), "1")
	if err != nil {
		t.Fatalf("Summary 失败: %v", err)
	}
	if sum.Overall != 0 || len(sum.Subjects) != 0 || sum.Status != "Critical" {
		t.Errorf("无记录时应为 0%%: %+v", sum)
	}
}
