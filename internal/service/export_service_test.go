package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func setupTestExportService() (*exportService, *repository.Repository) {
	cfg := testConfig()
	repo := newTestRepo()
	svc := NewExportService(&cfg.Campus, repo, nop).(*exportService)
	svc.now = fixedClock(time.Date(2026, 4, 2, 10, 0, 0, 0, time.Local))
	return svc, repo
}

func TestExportService_Timetable(t *testing.T) {
	svc, repo := setupTestExportService()
	cfg := testConfig()
	ctx := context.Background()

	tts := NewTimetableService(&cfg.Campus, repo, nop)
	_, _ = tts.SetSlot(ctx, facultyIdentity(), "IT-B", &dto.SetSlotRequest{Day: "Monday", TimeSlot: "9:00 AM - 10:00 AM", Subject: "Mathematics", Room: "A-101"})
	_, _ = tts.SetSlot(ctx, facultyIdentity(), "IT-B", &dto.SetSlotRequest{Day: "Wednesday", TimeSlot: "10:00 AM - 11:00 AM", Subject: "Physics"})

	buf, filename, err := svc.Timetable(ctx, studentIdentity(), "")
	if err != nil {
		t.Fatalf("导出课表失败: %v", err)
	}
	if filename != "timetable_IT-B.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Timetable")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("期望 4 行（标题+表头+2 个时间段），实际=%d", len(rows))
	}
	if rows[1][0] != "Time" || rows[1][1] != "Monday" {
		t.Errorf("表头错误: %v", rows[1])
	}
	if rows[2][1] != "Mathematics (A-101)" || rows[2][2] != "-" {
		t.Errorf("第一时间段内容错误: %v", rows[2])
	}
	if rows[3][3] != "Physics" {
		t.Errorf("周三单元格错误: %v", rows[3])
	}
}

func TestExportService_Timetable_NoData(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.Timetable(context.Background(), facultyIdentity(), "CSE-A")
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("期望 ErrExportNoData，实际: %v", err)
	}
}

func TestExportService_Attendance(t *testing.T) {
	svc, repo := setupTestExportService()
	ctx := context.Background()

	if _, _, err := svc.Attendance(ctx, facultyIdentity()); !errors.Is(err, ErrExportNoData) {
		t.Errorf("无记录时期望 ErrExportNoData，实际: %v", err)
	}

	att := NewAttendanceService(repo, nop)
	_, _ = att.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "3", Subject: "Physics", Present: boolPtr(true)})
	_, _ = att.Record(ctx, facultyIdentity(), &dto.RecordAttendanceRequest{StudentID: "1", Subject: "Physics", Present: boolPtr(false)})

	if _, _, err := svc.Attendance(ctx, studentIdentity()); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("学生导出应返回 Forbidden，实际: %v", err)
	}

	buf, filename, err := svc.Attendance(ctx, facultyIdentity())
	if err != nil {
		t.Fatalf("导出出勤失败: %v", err)
	}
	if filename != "attendance_20260402.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Attendance")
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际=%d", len(rows))
	}
	if rows[1][0] != "Priya Sharma" || rows[1][6] != "Critical" {
		t.Errorf("应按学生姓名排序: %v", rows[1])
	}
	if rows[2][0] != "Rohan Gupta" || rows[2][5] != "100" || rows[2][6] != "Excellent" {
		t.Errorf("出勤行错误: %v", rows[2])
	}
}
