package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableClassRequired = pkgerrors.New(pkgerrors.ErrValidation, "请先选择班级")
	ErrTimetableSlotNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "课表单元格不存在")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 课表以 (班级, 星期, 时间段) 为复合键逐格读写：
//   - 学生只能查看自己所在班级，请求中的班级参数被忽略。
//   - 教师可查看、设置、清除任意已配置班级的单元格。
//   - Grid 将单元格投影为 "时间段 × Monday..Saturday" 的网格。
// ─────────────────────────────────────────────────────────────

// TimetableService 课表业务接口
type TimetableService interface {
	Get(ctx context.Context, caller access.Identity, className string) (*dto.TimetableResponse, error)
	Grid(ctx context.Context, caller access.Identity, className string) (*dto.TimetableGridResponse, error)
	SetSlot(ctx context.Context, caller access.Identity, className string, req *dto.SetSlotRequest) (*dto.SlotResponse, error)
	ClearSlot(ctx context.Context, caller access.Identity, className string, req *dto.ClearSlotRequest) error
}

type timetableService struct {
	campus *config.CampusConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(campus *config.CampusConfig, repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{campus: campus, repo: repo, logger: logger}
}

// resolveClass 学生强制使用本人班级；其余角色校验班级是否已配置
func resolveClass(campus *config.CampusConfig, caller access.Identity, className string) (string, error) {
	if caller.IsStudent() {
		if caller.ClassName == "" {
			return "", ErrTimetableClassRequired
		}
		return caller.ClassName, nil
	}
	className = strings.TrimSpace(className)
	if !campus.HasClass(className) {
		return "", ErrUnknownClass
	}
	return className, nil
}

// ────────────────────── Get ──────────────────────

func (s *timetableService) Get(ctx context.Context, caller access.Identity, className string) (*dto.TimetableResponse, error) {
	slots, className, err := s.load(ctx, caller, className)
	if err != nil {
		return nil, err
	}
	resp := &dto.TimetableResponse{ClassName: className, Slots: make([]dto.SlotResponse, 0, len(slots))}
	for i := range slots {
		resp.Slots = append(resp.Slots, toSlotResponse(&slots[i]))
	}
	return resp, nil
}

// ────────────────────── Grid ──────────────────────

func (s *timetableService) Grid(ctx context.Context, caller access.Identity, className string) (*dto.TimetableGridResponse, error) {
	slots, className, err := s.load(ctx, caller, className)
	if err != nil {
		return nil, err
	}
	return BuildGrid(className, slots), nil
}

// BuildGrid 按时间段起点排序生成网格行；slots 须已按 SortSlots 排好序
func BuildGrid(className string, slots []model.TimetableSlot) *dto.TimetableGridResponse {
	grid := &dto.TimetableGridResponse{
		ClassName: className,
		Days:      append([]string(nil), model.Weekdays...),
		Rows:      []dto.TimetableGridRow{},
	}
	rowIndex := make(map[string]int)
	for _, slot := range slots {
		idx, ok := rowIndex[slot.TimeSlot]
		if !ok {
			idx = len(grid.Rows)
			rowIndex[slot.TimeSlot] = idx
			grid.Rows = append(grid.Rows, dto.TimetableGridRow{Time: slot.TimeSlot, Cells: map[string]string{}})
		}
		grid.Rows[idx].Cells[slot.Day] = slot.Subject
	}
	return grid
}

func (s *timetableService) load(ctx context.Context, caller access.Identity, className string) ([]model.TimetableSlot, string, error) {
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
	return slots, className, nil
}

// ────────────────────── SetSlot ──────────────────────

func (s *timetableService) SetSlot(ctx context.Context, caller access.Identity, className string, req *dto.SetSlotRequest) (*dto.SlotResponse, error) {
	if err := access.For(caller).Require(access.Timetable, access.Edit); err != nil {
		return nil, err
	}
	className, err := resolveClass(s.campus, caller, className)
	if err != nil {
		return nil, err
	}
	if !model.IsWeekday(req.Day) {
		return nil, pkgerrors.Validation("day", "仅支持 Monday 至 Saturday")
	}
	timeSlot, err := requireText("time_slot", req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if _, ok := model.SlotStartMinutes(timeSlot); !ok {
		return nil, pkgerrors.Validation("time_slot", "时间段格式应为 9:00 AM - 10:00 AM")
	}
	subject, err := requireText("subject", req.Subject)
	if err != nil {
		return nil, err
	}

	slot := &model.TimetableSlot{
		ClassName: className,
		Day:       req.Day,
		TimeSlot:  timeSlot,
		Subject:   subject,
		Teacher:   defaultString(req.Teacher, caller.Name),
		Room:      strings.TrimSpace(req.Room),
	}
	if err := s.repo.Timetable.Upsert(ctx, slot); err != nil {
		s.logger.Error("保存课表单元格失败",
			zap.String("class", className),
			zap.String("day", slot.Day),
			zap.String("time_slot", slot.TimeSlot),
			zap.Error(err),
		)
		return nil, err
	}

	resp := toSlotResponse(slot)
	return &resp, nil
}

// ────────────────────── ClearSlot ──────────────────────

func (s *timetableService) ClearSlot(ctx context.Context, caller access.Identity, className string, req *dto.ClearSlotRequest) error {
	if err := access.For(caller).Require(access.Timetable, access.Edit); err != nil {
		return err
	}
	className, err := resolveClass(s.campus, caller, className)
	if err != nil {
		return err
	}
	if err := s.repo.Timetable.Delete(ctx, className, req.Day, strings.TrimSpace(req.TimeSlot)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimetableSlotNotFound
		}
		s.logger.Error("清除课表单元格失败", zap.String("class", className), zap.Error(err))
		return err
	}
	return nil
}

func toSlotResponse(s *model.TimetableSlot) dto.SlotResponse {
	return dto.SlotResponse{
		Day:       s.Day,
		TimeSlot:  s.TimeSlot,
		Subject:   s.Subject,
		Teacher:   s.Teacher,
		Room:      s.Room,
		UpdatedAt: s.UpdatedAt,
	}
}
