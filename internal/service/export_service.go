package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = pkgerrors.New(pkgerrors.ErrNotFound, "没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出模块业务接口
type ExportService interface {
	// Timetable 导出班级课表（行 = 时间段，列 = Monday..Saturday）
	Timetable(ctx context.Context, caller access.Identity, className string) (*bytes.Buffer, string, error)
	// Attendance 导出全部学生分科出勤（教师）
	Attendance(ctx context.Context, caller access.Identity) (*bytes.Buffer, string, error)
}

type exportService struct {
	campus *config.CampusConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(campus *config.CampusConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{campus: campus, repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// Timetable，导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（合并单元格）
//   - 第 2 行：Time | Monday .. Saturday
//   - 数据行：按时间段起点排序，单元格为 "科目 (教室)"，空单元格为 "-"

func (s *exportService) Timetable(ctx context.Context, caller access.Identity, className string) (*bytes.Buffer, string, error) {
	if err := access.For(caller).Require(access.Timetable, access.View); err != nil {
		return nil, "", err
	}
	className, err := resolveClass(s.campus, caller, className)
	if err != nil {
		return nil, "", err
	}
	slots, err := s.repo.Timetable.ListByClass(ctx, className)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("class", className), zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoData
	}

	cellText := make(map[string]string, len(slots))
	for _, slot := range slots {
		text := slot.Subject
		if slot.Room != "" {
			text += " (" + slot.Room + ")"
		}
		cellText[slot.SlotKey()] = text
	}
	grid := BuildGrid(className, slots)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timetable"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 22)
	f.SetColWidth(sheetName, colName(1), colName(len(model.Weekdays)), 24)
	headerStyle := newHeaderStyle(f)

	lastCol := colName(len(model.Weekdays))
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 课表", className))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Time")
	for i, day := range model.Weekdays {
		f.SetCellValue(sheetName, cell(colName(1+i), row), day)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	row = 3
	for _, r := range grid.Rows {
		f.SetCellValue(sheetName, cell("A", row), r.Time)
		for i, day := range model.Weekdays {
			text, ok := cellText[day+"|"+r.Time]
			if !ok {
				text = "-"
			}
			f.SetCellValue(sheetName, cell(colName(1+i), row), text)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("timetable_%s.xlsx", className), nil
}

// ═══════════════════════════════════════════════════════════
// Attendance，导出出勤明细为 Excel
// ═══════════════════════════════════════════════════════════
//
// 每行一名学生的一门科目：学生 | 科目 | 教师 | 出勤/总课时 | 出勤率 | 状态
// 出勤率导出时现算，不读取任何持久化的百分比

func (s *exportService) Attendance(ctx context.Context, caller access.Identity) (*bytes.Buffer, string, error) {
	if err := access.For(caller).Require(access.Attendance, access.ViewAll); err != nil {
		return nil, "", err
	}
	records, _, err := s.repo.Attendance.List(ctx, repository.Query{})
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoData
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].StudentName != records[j].StudentName {
			return records[i].StudentName < records[j].StudentName
		}
		return records[i].Subject < records[j].Subject
	})

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attendance"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student", "Subject", "Teacher", "Attended", "Total", "Percentage", "Status"}
	widths := []float64{20, 22, 20, 10, 10, 12, 12}
	for i, w := range widths {
		f.SetColWidth(sheetName, colName(i), colName(i), w)
	}
	headerStyle := newHeaderStyle(f)

	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for i := range records {
		r := &records[i]
		pct := r.Percentage()
		f.SetCellValue(sheetName, cell("A", row), r.StudentName)
		f.SetCellValue(sheetName, cell("B", row), r.Subject)
		f.SetCellValue(sheetName, cell("C", row), r.Teacher)
		f.SetCellValue(sheetName, cell("D", row), r.AttendedClasses)
		f.SetCellValue(sheetName, cell("E", row), r.TotalClasses)
		f.SetCellValue(sheetName, cell("F", row), pct)
		f.SetCellValue(sheetName, cell("G", row), AttendanceStatus(pct))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("attendance_%s.xlsx", s.now().Format("20060102")), nil
}

// ── 辅助函数 ──

func newHeaderStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
