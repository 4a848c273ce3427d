//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=campus password=campus_password dbname=campus_portal_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// ═══════════════════════════════════════════════════════════
// UserRepository
// ═══════════════════════════════════════════════════════════

func TestUserRepo_GetByEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testDB)

	email := uniqueName("Mixed") + "@Campus.edu"
	user := &model.User{Name: "测试学生", Email: email, Role: model.RoleStudent, PasswordHash: "x"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	t.Cleanup(func() { testDB.Delete(&model.User{}, "id = ?", user.ID) })

	got, err := repo.GetByEmail(ctx, "mixed"+email[5:])
	if err != nil {
		t.Fatalf("按邮箱查询失败: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("期望 ID=%s，实际=%s", user.ID, got.ID)
	}

	if err := repo.UpdateClass(ctx, user.ID, "IT-B"); err != nil {
		t.Fatalf("更新班级失败: %v", err)
	}
	got, _ = repo.GetByID(ctx, user.ID)
	if got.Class() != "IT-B" {
		t.Errorf("期望班级=IT-B，实际=%s", got.Class())
	}

	dup := &model.User{Name: "重复", Email: email, Role: model.RoleFaculty, PasswordHash: "x"}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("期望 ErrDuplicate，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// GormCollection
// ═══════════════════════════════════════════════════════════

func newMaintenanceCollection() repository.Collection[model.MaintenanceRequest] {
	return repository.NewGormCollection[model.MaintenanceRequest](testDB, repository.GormOptions{
		SearchColumns:  []string{"title", "description", "reported_by"},
		CategoryColumn: "category",
	})
}

func TestGormCollection_FilterAndUpdate(t *testing.T) {
	ctx := context.Background()
	coll := newMaintenanceCollection()
	marker := uniqueName("集成")

	items := []model.MaintenanceRequest{
		{Title: marker + " 空调不制冷", Description: "A-101", Category: "HVAC", Location: "A-101", Priority: "High", Status: model.MaintenancePending, StudentID: "s1", ReportedBy: "Priya"},
		{Title: marker + " 水管漏水", Description: "B-2", Category: "Plumbing", Location: "B-2", Priority: "Medium", Status: model.MaintenancePending, StudentID: "s1", ReportedBy: "Rohan"},
	}
	for i := range items {
		if err := coll.Create(ctx, &items[i]); err != nil {
			t.Fatalf("创建工单失败: %v", err)
		}
	}
	t.Cleanup(func() {
		testDB.Delete(&model.MaintenanceRequest{}, "id IN ?", []string{items[0].ID, items[1].ID})
	})

	list, total, err := coll.List(ctx, repository.Query{Filter: repository.FilterState{SearchTerm: marker, Category: "HVAC"}})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != items[0].ID {
		t.Fatalf("期望仅命中 HVAC 工单，实际 total=%d", total)
	}

	_, total, _ = coll.List(ctx, repository.Query{Filter: repository.FilterState{SearchTerm: "ROHAN", Category: repository.CategoryAll}})
	if total < 1 {
		t.Errorf("期望按作者忽略大小写命中，实际 total=%d", total)
	}

	updated, err := coll.Update(ctx, items[1].ID, func(m *model.MaintenanceRequest) error {
		m.Status = model.MaintenanceInProgress
		return nil
	})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if updated.Status != model.MaintenanceInProgress {
		t.Errorf("期望状态=In Progress，实际=%s", updated.Status)
	}

	_, err = coll.Update(ctx, items[0].ID, func(m *model.MaintenanceRequest) error {
		m.Status = model.MaintenanceResolved
		return errors.New("拒绝")
	})
	if err == nil {
		t.Fatal("期望 fn 错误被返回")
	}
	got, _ := coll.Get(ctx, items[0].ID)
	if got.Status != model.MaintenancePending {
		t.Errorf("fn 失败后不应修改，实际状态=%s", got.Status)
	}

	if _, err := coll.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestGormChildCollection_UniqueSubmission(t *testing.T) {
	ctx := context.Background()
	assignments := repository.NewGormCollection[model.Assignment](testDB, repository.GormOptions{})
	submissions := repository.NewChildCollection[model.Submission](
		repository.NewGormCollection[model.Submission](testDB, repository.GormOptions{OrderColumn: "submitted_at"}),
		"assignment_id")

	a := &model.Assignment{Title: uniqueName("作业"), Subject: "Mathematics", Description: "d",
		DueDate: time.Now().AddDate(0, 0, 7), MaxMarks: 100, FacultyID: "f1", AssignedBy: "Dr. Anjali Verma"}
	if err := assignments.Create(ctx, a); err != nil {
		t.Fatalf("创建作业失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Delete(&model.Submission{}, "assignment_id = ?", a.ID)
		testDB.Delete(&model.Assignment{}, "id = ?", a.ID)
	})

	first := &model.Submission{StudentID: "s1", StudentName: "Priya", Content: "答案", Status: model.SubmissionSubmitted}
	if err := submissions.Append(ctx, a.ID, first); err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	second := &model.Submission{StudentID: "s1", StudentName: "Priya", Content: "再次", Status: model.SubmissionSubmitted}
	if err := submissions.Append(ctx, a.ID, second); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("期望重复提交返回 ErrDuplicate，实际: %v", err)
	}

	n, err := submissions.CountByParent(ctx, a.ID)
	if err != nil || n != 1 {
		t.Errorf("期望 1 条提交，实际 n=%d err=%v", n, err)
	}
}

// ═══════════════════════════════════════════════════════════
// TimetableRepository
// ═══════════════════════════════════════════════════════════

func TestTimetableRepo_UpsertIsPerCell(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTimetableRepo(testDB)
	class := uniqueName("T")[:20]
	t.Cleanup(func() { testDB.Delete(&model.TimetableSlot{}, "class_name = ?", class) })

	mon := &model.TimetableSlot{ClassName: class, Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Computer Networks"}
	tue := &model.TimetableSlot{ClassName: class, Day: "Tuesday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "DBMS"}
	for _, s := range []*model.TimetableSlot{mon, tue} {
		if err := repo.Upsert(ctx, s); err != nil {
			t.Fatalf("Upsert 失败: %v", err)
		}
	}

	mon.Subject = "Operating Systems"
	if err := repo.Upsert(ctx, mon); err != nil {
		t.Fatalf("覆盖 Upsert 失败: %v", err)
	}

	slots, err := repo.ListByClass(ctx, class)
	if err != nil {
		t.Fatalf("ListByClass 失败: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("期望 2 个单元格，实际=%d", len(slots))
	}
	if slots[0].Day != "Monday" || slots[0].Subject != "Operating Systems" {
		t.Errorf("Monday 单元格未更新: %+v", slots[0])
	}
	if slots[1].Subject != "DBMS" {
		t.Errorf("Tuesday 单元格不应被影响: %+v", slots[1])
	}

	if err := repo.Delete(ctx, class, "Friday", "9:00 AM - 11:00 AM"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望删除不存在单元格返回 ErrRecordNotFound，实际: %v", err)
	}
}
