package service

import (
	"context"
	"errors"
	"sort"
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

// ── 考勤模块业务错误 ──

var (
	ErrStudentNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "学生不存在")
)

// AttendanceStatus 按出勤率分级：≥90 Excellent，≥80 Good，≥75 Warning，其余 Critical
func AttendanceStatus(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 80:
		return "Good"
	case pct >= 75:
		return "Warning"
	default:
		return "Critical"
	}
}

// AttendanceService 考勤业务接口；出勤率始终在读取时计算
type AttendanceService interface {
	// Summary studentID 为空时查看本人，查看他人需要 view_all
	Summary(ctx context.Context, caller access.Identity, studentID string) (*dto.AttendanceSummaryResponse, error)
	Roster(ctx context.Context, caller access.Identity) ([]dto.AttendanceRosterItem, error)
	// Record 记录一次课堂：总课时 +1，出席时已出勤 +1
	Record(ctx context.Context, caller access.Identity, req *dto.RecordAttendanceRequest) (*dto.AttendanceSubjectResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Summary ──────────────────────

func (s *attendanceService) Summary(ctx context.Context, caller access.Identity, studentID string) (*dto.AttendanceSummaryResponse, error) {
	caps := access.For(caller)
	if err := caps.Require(access.Attendance, access.View); err != nil {
		return nil, err
	}
	studentName := caller.Name
	if studentID == "" || studentID == caller.ID {
		studentID = caller.ID
	} else {
		if err := caps.Require(access.Attendance, access.ViewAll); err != nil {
			return nil, err
		}
		student, err := s.repo.User.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		studentName = student.Name
	}

	records, _, err := s.repo.Attendance.List(ctx, repository.Query{Scopes: []repository.Scope{repository.Eq("student_id", studentID)}})
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return summarize(studentID, studentName, records), nil
}

// summarize 汇总：overall = round(Σattended / Σtotal × 100, 1)
func summarize(studentID, studentName string, records []model.AttendanceRecord) *dto.AttendanceSummaryResponse {
	sort.Slice(records, func(i, j int) bool { return records[i].Subject < records[j].Subject })

	resp := &dto.AttendanceSummaryResponse{
		StudentID:   studentID,
		StudentName: studentName,
		Subjects:    make([]dto.AttendanceSubjectResponse, 0, len(records)),
	}
	for i := range records {
		r := &records[i]
		resp.TotalClasses += r.TotalClasses
		resp.AttendedClasses += r.AttendedClasses
		resp.Subjects = append(resp.Subjects, toAttendanceSubject(r))
	}
	resp.Overall = model.RoundPercent(resp.AttendedClasses, resp.TotalClasses)
	resp.Status = AttendanceStatus(resp.Overall)
	return resp
}

// ────────────────────── Roster ──────────────────────

func (s *attendanceService) Roster(ctx context.Context, caller access.Identity) ([]dto.AttendanceRosterItem, error) {
	if err := access.For(caller).Require(access.Attendance, access.ViewAll); err != nil {
		return nil, err
	}
	records, _, err := s.repo.Attendance.List(ctx, repository.Query{})
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, err
	}

	type agg struct {
		name            string
		attended, total int
	}
	byStudent := make(map[string]*agg)
	var order []string
	for _, r := range records {
		a, ok := byStudent[r.StudentID]
		if !ok {
			a = &agg{name: r.StudentName}
			byStudent[r.StudentID] = a
			order = append(order, r.StudentID)
		}
		a.attended += r.AttendedClasses
		a.total += r.TotalClasses
	}

	result := make([]dto.AttendanceRosterItem, 0, len(order))
	for _, id := range order {
		a := byStudent[id]
		pct := model.RoundPercent(a.attended, a.total)
		result = append(result, dto.AttendanceRosterItem{
			StudentID:   id,
			StudentName: a.name,
			Overall:     pct,
			Status:      AttendanceStatus(pct),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentName < result[j].StudentName })
	return result, nil
}

// ────────────────────── Record ──────────────────────

func (s *attendanceService) Record(ctx context.Context, caller access.Identity, req *dto.RecordAttendanceRequest) (*dto.AttendanceSubjectResponse, error) {
	if err := access.For(caller).Require(access.Attendance, access.Record); err != nil {
		return nil, err
	}
	if req.Present == nil {
		return nil, pkgerrors.Validation("present", "不能为空")
	}
	subject, err := requireText("subject", req.Subject)
	if err != nil {
		return nil, err
	}
	day := startOfDay(s.now())
	if strings.TrimSpace(req.Date) != "" {
		if day, err = parseDate("date", req.Date); err != nil {
			return nil, err
		}
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

	present := *req.Present
	existing, _, err := s.repo.Attendance.List(ctx, repository.Query{Scopes: []repository.Scope{
		repository.Eq("student_id", student.ID),
		repository.Eq("subject", subject),
	}})
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}

	var rec *model.AttendanceRecord
	if len(existing) == 0 {
		rec = &model.AttendanceRecord{
			StudentID:    student.ID,
			StudentName:  student.Name,
			Subject:      subject,
			Teacher:      caller.Name,
			TotalClasses: 1,
		}
		if present {
			rec.AttendedClasses = 1
			rec.LastAttended = &day
		}
		err = s.repo.Attendance.Create(ctx, rec)
	} else {
		rec, err = s.repo.Attendance.Update(ctx, existing[0].ID, func(r *model.AttendanceRecord) error {
			r.TotalClasses++
			if present {
				r.AttendedClasses++
				r.LastAttended = &day
			}
			return nil
		})
	}
	if err != nil {
		s.logger.Error("记录出勤失败", zap.String("student_id", student.ID), zap.String("subject", subject), zap.Error(err))
		return nil, err
	}

	resp := toAttendanceSubject(rec)
	return &resp, nil
}

func toAttendanceSubject(r *model.AttendanceRecord) dto.AttendanceSubjectResponse {
	pct := r.Percentage()
	resp := dto.AttendanceSubjectResponse{
		Subject:         r.Subject,
		Teacher:         r.Teacher,
		TotalClasses:    r.TotalClasses,
		AttendedClasses: r.AttendedClasses,
		Percentage:      pct,
		Status:          AttendanceStatus(pct),
	}
	if r.LastAttended != nil {
		resp.LastAttended = r.LastAttended.Format(dateLayout)
	}
	return resp
}
