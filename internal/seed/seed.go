// Package seed 提供演示身份表与各业务实体的初始数据。
// 每次调用都返回新的切片，调用方可以自由修改，不存在被共享的包级可变状态。
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// DemoClass 演示课表所属班级
const DemoClass = "IT-B"

// 演示账号邮箱
const (
	Student1Email = "student1@campus.edu"
	Faculty1Email = "faculty1@campus.edu"
	Student2Email = "student2@campus.edu"
	Faculty2Email = "faculty2@campus.edu"
)

// DemoUsers 演示身份表（mock 提供方使用，密码统一为配置中的演示密码）
func DemoUsers() []model.User {
	return []model.User{
		{ID: "1", Name: "Priya Sharma", Email: Student1Email, Role: model.RoleStudent},
		{ID: "2", Name: "Dr. Anjali Verma", Email: Faculty1Email, Role: model.RoleFaculty},
		{ID: "3", Name: "Rohan Gupta", Email: Student2Email, Role: model.RoleStudent},
		{ID: "4", Name: "Prof. Vikram Singh", Email: Faculty2Email, Role: model.RoleFaculty},
	}
}

// Certificates 证书目录
func Certificates() []model.Certificate {
	return []model.Certificate{
		{Name: "Academic Transcript", Description: "Official academic record with grades and courses", Type: "Academic", Fee: 25, ProcessingTime: "2-3 business days", Available: true},
		{Name: "Enrollment Certificate", Description: "Proof of current enrollment status", Type: "Administrative", Fee: 15, ProcessingTime: "1 business day", Available: true},
		{Name: "Character Certificate", Description: "Certificate of good conduct and character", Type: "Administrative", Fee: 20, ProcessingTime: "3-5 business days", Available: true},
		{Name: "Degree Certificate", Description: "Official degree completion certificate", Type: "Academic", Fee: 50, ProcessingTime: "5-7 business days", Available: false, UnavailableReason: "Available after graduation"},
		{Name: "Course Completion Certificate", Description: "Certificate for specific course completion", Type: "Course", Fee: 10, ProcessingTime: "1-2 business days", Available: true},
		{Name: "Scholarship Certificate", Description: "Certificate recognizing scholarship achievements", Type: "Achievement", Fee: 0, ProcessingTime: "2-3 business days", Available: true},
	}
}

// Timetable IT-B 班级演示课表
func Timetable() []model.TimetableSlot {
	return []model.TimetableSlot{
		{ClassName: DemoClass, Day: "Monday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Computer Networks", Room: "Lab 2"},
		{ClassName: DemoClass, Day: "Tuesday", TimeSlot: "10:00 AM - 12:00 PM", Subject: "Database Management Systems", Room: "Room 204"},
		{ClassName: DemoClass, Day: "Wednesday", TimeSlot: "1:00 PM - 3:00 PM", Subject: "Operating Systems", Room: "Room 105"},
		{ClassName: DemoClass, Day: "Thursday", TimeSlot: "9:00 AM - 11:00 AM", Subject: "Software Engineering", Room: "Room 204"},
		{ClassName: DemoClass, Day: "Friday", TimeSlot: "11:00 AM - 1:00 PM", Subject: "Web Technologies", Room: "Lab 1"},
	}
}

type attendanceRow struct {
	subject, teacher string
	total, attended  int
	lastAttended     string
}

// attendanceRows 按学生邮箱给出的分科出勤
func attendanceRows() map[string][]attendanceRow {
	return map[string][]attendanceRow{
		Student1Email: {
			{"Mathematics", "Dr. Smith", 45, 42, "2024-01-15"},
			{"Physics", "Prof. Johnson", 40, 35, "2024-01-14"},
			{"Chemistry", "Dr. Brown", 38, 30, "2024-01-13"},
			{"Computer Science", "Mr. Wilson", 42, 40, "2024-01-15"},
			{"English", "Ms. Davis", 35, 33, "2024-01-12"},
			{"Biology", "Dr. Taylor", 32, 25, "2024-01-11"},
		},
		Student2Email: {
			{"Mathematics", "Dr. Smith", 45, 33, "2024-01-15"},
			{"Physics", "Prof. Johnson", 40, 31, "2024-01-12"},
			{"Computer Science", "Mr. Wilson", 42, 30, "2024-01-15"},
		},
	}
}

// Load 将演示数据写入 repo；证书目录非空时视为已初始化，直接跳过。
// 数据库提供方下 passwordHash 写入演示账号，mock 提供方可传空串。
func Load(ctx context.Context, repo *repository.Repository, passwordHash string, now time.Time, logger *zap.Logger) error {
	n, err := repo.Certificate.Count(ctx)
	if err != nil {
		return fmt.Errorf("检查演示数据失败: %w", err)
	}
	if n > 0 {
		logger.Info("演示数据已存在，跳过初始化")
		return nil
	}

	users, err := ensureUsers(ctx, repo.User, passwordHash)
	if err != nil {
		return err
	}
	student1, faculty1 := users[Student1Email], users[Faculty1Email]
	student2, faculty2 := users[Student2Email], users[Faculty2Email]

	steps := []struct {
		name string
		fn   func() error
	}{
		{"证书目录", func() error { return loadCertificates(ctx, repo, student1) }},
		{"课表", func() error { return loadTimetable(ctx, repo) }},
		{"出勤", func() error { return loadAttendance(ctx, repo, users) }},
		{"学费", func() error { return loadFees(ctx, repo, now, student1, student2) }},
		{"维修工单", func() error { return loadMaintenance(ctx, repo, student1, student2, faculty1) }},
		{"笔记", func() error { return loadNotes(ctx, repo, faculty1, faculty2) }},
		{"作业", func() error { return loadAssignments(ctx, repo, now, faculty1, faculty2, student1, student2) }},
		{"答疑", func() error { return loadDoubts(ctx, repo, student1, student2, faculty1, faculty2) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("写入演示%s失败: %w", step.name, err)
		}
	}

	logger.Info("演示数据初始化完成", zap.Int("users", len(users)))
	return nil
}

// ensureUsers 按邮箱补齐演示账号，返回 邮箱 → 身份
func ensureUsers(ctx context.Context, users repository.UserRepository, passwordHash string) (map[string]*model.User, error) {
	out := make(map[string]*model.User)
	for _, u := range DemoUsers() {
		existing, err := users.GetByEmail(ctx, u.Email)
		if err == nil {
			out[u.Email] = existing
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询演示账号失败: %w", err)
		}
		u := u
		u.ID = ""
		u.PasswordHash = passwordHash
		if err := users.Create(ctx, &u); err != nil {
			return nil, fmt.Errorf("创建演示账号 %s 失败: %w", u.Email, err)
		}
		out[u.Email] = &u
	}
	return out, nil
}

func loadCertificates(ctx context.Context, repo *repository.Repository, student *model.User) error {
	byName := make(map[string]*model.Certificate)
	for _, c := range Certificates() {
		c := c
		if err := repo.Certificate.Create(ctx, &c); err != nil {
			return err
		}
		byName[c.Name] = &c
	}

	history := []struct {
		name, status string
	}{
		{"Character Certificate", model.CertificateCompleted},
		{"Academic Transcript", model.CertificateProcessing},
		{"Enrollment Certificate", model.CertificateCompleted},
	}
	for _, h := range history {
		cert := byName[h.name]
		req := &model.CertificateRequest{
			CertificateID: cert.ID,
			Certificate:   cert.Name,
			StudentID:     student.ID,
			StudentName:   student.Name,
			Status:        h.status,
		}
		if h.status == model.CertificateCompleted {
			at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
			req.GeneratedAt = &at
		}
		if err := repo.CertificateRequest.Create(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func loadTimetable(ctx context.Context, repo *repository.Repository) error {
	for _, slot := range Timetable() {
		slot := slot
		if err := repo.Timetable.Upsert(ctx, &slot); err != nil {
			return err
		}
	}
	return nil
}

func loadAttendance(ctx context.Context, repo *repository.Repository, users map[string]*model.User) error {
	for email, rows := range attendanceRows() {
		student := users[email]
		for _, r := range rows {
			last, _ := time.Parse("2006-01-02", r.lastAttended)
			rec := &model.AttendanceRecord{
				StudentID:       student.ID,
				StudentName:     student.Name,
				Subject:         r.subject,
				Teacher:         r.teacher,
				TotalClasses:    r.total,
				AttendedClasses: r.attended,
				LastAttended:    &last,
			}
			if err := repo.Attendance.Create(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadFees(ctx context.Context, repo *repository.Repository, now time.Time, students ...*model.User) error {
	paidAt := now.AddDate(0, -5, 0)
	for _, student := range students {
		fees := []model.Fee{
			{Type: "Tuition", Semester: "Fall 2024", Amount: 16600, PaidAmount: 16600, DueDate: now.AddDate(0, -4, 0), PaidAt: &paidAt},
			{Type: "Tuition", Semester: "Spring 2025", Amount: 16600, PaidAmount: 10000, DueDate: now.AddDate(0, 1, 0)},
			{Type: "Summer Term", Semester: "Summer 2025", Amount: 8900, PaidAmount: 0, DueDate: now.AddDate(0, 3, 0)},
		}
		for i := range fees {
			fees[i].StudentID = student.ID
			if err := repo.Fee.Create(ctx, &fees[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadMaintenance(ctx context.Context, repo *repository.Repository, student1, student2, faculty *model.User) error {
	resolved := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)
	items := []model.MaintenanceRequest{
		{Title: "Broken chair in Library", Description: "One of the study chairs in the library has a broken leg and is unsafe to use.", Category: "Furniture", Location: "Library, Section C", Priority: "Low", Status: model.MaintenanceResolved, StudentID: student2.ID, ReportedBy: student2.Name, AssignedTo: "Maintenance Team B", ResolvedAt: &resolved},
		{Title: "Water leak in restroom", Description: "There's a water leak under the sink in the restroom on the second floor.", Category: "Plumbing", Location: "2nd Floor Restroom, Building B", Priority: "High", Status: model.MaintenanceResolved, StudentID: student2.ID, ReportedBy: student2.Name, AssignedTo: "Plumbing Team", ResolvedAt: &resolved},
		{Title: "Broken projector in Lecture Hall", Description: "The projector screen is not displaying properly. There are dark spots and flickering.", Category: "Electronics", Location: "Lecture Hall 1", Priority: "Medium", Status: model.MaintenancePending, StudentID: faculty.ID, ReportedBy: faculty.Name},
		{Title: "AC not working in Room 101", Description: "The air conditioning unit in classroom 101 is not cooling properly.", Category: "HVAC", Location: "Room 101, Building A", Priority: "High", Status: model.MaintenanceInProgress, StudentID: student1.ID, ReportedBy: student1.Name, AssignedTo: "Maintenance Team A"},
	}
	for i := range items {
		if err := repo.Maintenance.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func loadNotes(ctx context.Context, repo *repository.Repository, faculty1, faculty2 *model.User) error {
	notes := []struct {
		author *model.User
		note   model.Note
	}{
		{faculty1, model.Note{Title: "Computer Networks - TCP/IP Protocol", Description: "Detailed study of TCP/IP protocol stack and network communication.", Subject: "Computer Networks", Tags: model.StringList{"networking", "TCP", "IP", "protocols"}, Views: 203}},
		{faculty2, model.Note{Title: "Operating Systems - Process Scheduling", Description: "Notes on various process scheduling algorithms and their implementations.", Subject: "Operating Systems", Tags: model.StringList{"scheduling", "processes", "algorithms"}, Views: 156}},
		{faculty1, model.Note{Title: "Database Systems - Normalization", Description: "Detailed explanation of database normalization forms with practical examples.", Subject: "Database Systems", Tags: model.StringList{"normalization", "DBMS", "SQL"}, Views: 189}},
		{faculty2, model.Note{Title: "Data Structures - Trees and Graphs", Description: "Comprehensive notes covering binary trees, AVL trees, and graph algorithms with examples.", Subject: "Data Structures", Tags: model.StringList{"algorithms", "trees", "graphs"}, Views: 245}},
	}
	for _, item := range notes {
		n := item.note
		n.FileType = "PDF"
		n.UploadedBy = item.author.ID
		n.AuthorName = item.author.Name
		n.AuthorRole = item.author.Role
		if err := repo.Note.Create(ctx, &n); err != nil {
			return err
		}
	}
	return nil
}

func loadAssignments(ctx context.Context, repo *repository.Repository, now time.Time, faculty1, faculty2, student1, student2 *model.User) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	assignments := []struct {
		author *model.User
		a      model.Assignment
	}{
		{faculty1, model.Assignment{Title: "Calculus Problem Set 3", Description: "Solve the integration problems from Chapter 5. Show all working steps.", Subject: "Mathematics", DueDate: today.AddDate(0, 0, -2), MaxMarks: 50}},
		{faculty2, model.Assignment{Title: "Physics Lab Report - Pendulum Experiment", Description: "Write a comprehensive lab report on the simple pendulum experiment.", Subject: "Physics", DueDate: today.AddDate(0, 0, 5), MaxMarks: 100}},
		{faculty1, model.Assignment{Title: "Essay: Environmental Chemistry", Description: "Write a 2000-word essay on the impact of industrial waste on water bodies.", Subject: "Chemistry", DueDate: today.AddDate(0, 0, 12), MaxMarks: 75}},
	}
	created := make([]model.Assignment, 0, len(assignments))
	for _, item := range assignments {
		a := item.a
		a.FacultyID = item.author.ID
		a.AssignedBy = item.author.Name
		if err := repo.Assignment.Create(ctx, &a); err != nil {
			return err
		}
		created = append(created, a)
	}

	marks := 45.0
	gradedAt := today.AddDate(0, 0, -1)
	graded := &model.Submission{
		StudentID:   student1.ID,
		StudentName: student1.Name,
		Content:     "Solutions attached with full working.",
		Status:      model.SubmissionGraded,
		Marks:       &marks,
		Feedback:    "Excellent work! Minor error in problem 3.",
		GradedBy:    &faculty1.ID,
		GradedAt:    &gradedAt,
	}
	if err := repo.Submission.Append(ctx, created[0].ID, graded); err != nil {
		return err
	}
	pending := &model.Submission{
		StudentID:   student2.ID,
		StudentName: student2.Name,
		Content:     "Draft essay on industrial waste and river pollution.",
		Status:      model.SubmissionSubmitted,
	}
	return repo.Submission.Append(ctx, created[2].ID, pending)
}

func loadDoubts(ctx context.Context, repo *repository.Repository, student1, student2, faculty1, faculty2 *model.User) error {
	doubts := []struct {
		author  *model.User
		d       model.Doubt
		replier *model.User
		reply   string
	}{
		{student2, model.Doubt{Title: "Organic Chemistry Reaction Mechanisms", Question: "What's the mechanism for nucleophilic substitution in alkyl halides?", Subject: "Chemistry"}, nil, ""},
		{student2, model.Doubt{Title: "Quantum Physics - Wave-Particle Duality", Question: "Can someone explain how light can behave as both a wave and a particle?", Subject: "Physics", Resolved: true}, faculty2, "Light exhibits wave properties (interference, diffraction) and particle properties (photoelectric effect). The behavior depends on the experimental setup."},
		{student1, model.Doubt{Title: "Help with Calculus Integration", Question: "I'm struggling with integration by parts. Can someone explain the step-by-step process?", Subject: "Mathematics"}, faculty1, "Integration by parts uses the formula: ∫u dv = uv - ∫v du. First identify u and dv, then apply the formula."},
	}
	for _, item := range doubts {
		d := item.d
		d.StudentID = item.author.ID
		d.AuthorName = item.author.Name
		d.AuthorRole = item.author.Role
		if err := repo.Doubt.Create(ctx, &d); err != nil {
			return err
		}
		if item.replier == nil {
			continue
		}
		reply := &model.DoubtReply{
			RepliedBy:  item.replier.ID,
			AuthorName: item.replier.Name,
			AuthorRole: item.replier.Role,
			Reply:      item.reply,
		}
		if err := repo.DoubtReply.Append(ctx, d.ID, reply); err != nil {
			return err
		}
	}
	return nil
}
