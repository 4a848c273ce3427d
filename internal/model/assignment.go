package model

import "time"

// 提交状态
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Assignment 作业，对应 assignments
type Assignment struct {
	ID          string    `gorm:"type:uuid;primaryKey"       json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Subject     string    `gorm:"type:varchar(100);not null" json:"subject"`
	Description string    `gorm:"type:text;not null"         json:"description"`
	DueDate     time.Time `gorm:"type:date;not null"         json:"due_date"`
	MaxMarks    int       `gorm:"not null"                   json:"max_marks"`
	FacultyID   string    `gorm:"type:varchar(64);not null"  json:"faculty_id"`
	AssignedBy  string    `gorm:"type:varchar(100);not null" json:"assigned_by"`
	Timestamps
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

func (a *Assignment) RecordID() string { return a.ID }

func (a *Assignment) AssignID(id string, now time.Time) {
	a.ID = id
	a.stamp(now)
}

func (a *Assignment) SearchText() []string { return []string{a.Title, a.Description, a.AssignedBy} }

func (a *Assignment) FilterCategory() string { return a.Subject }

func (a *Assignment) Field(column string) any {
	switch column {
	case "subject":
		return a.Subject
	case "faculty_id":
		return a.FacultyID
	}
	return nil
}

// Submission 作业提交，对应 submissions；(assignment_id, student_id) 唯一
type Submission struct {
	ID           string     `gorm:"type:uuid;primaryKey"       json:"id"`
	AssignmentID string     `gorm:"type:uuid;not null"         json:"assignment_id"`
	StudentID    string     `gorm:"type:varchar(64);not null"  json:"student_id"`
	StudentName  string     `gorm:"type:varchar(100);not null" json:"student_name"`
	Content      string     `gorm:"type:text;not null"         json:"content"`
	FileURL      *string    `gorm:"type:varchar(500)"          json:"file_url,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null"  json:"status"`
	Marks        *float64   `gorm:"type:numeric(6,2)"          json:"marks,omitempty"`
	Feedback     string     `gorm:"type:text;not null"         json:"feedback"`
	GradedBy     *string    `gorm:"type:varchar(64)"           json:"graded_by,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	SubmittedAt  time.Time  `gorm:"not null"                   json:"submitted_at"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

func (s *Submission) RecordID() string { return s.ID }

func (s *Submission) AssignID(id string, now time.Time) {
	s.ID = id
	s.SubmittedAt = now
}

// Touch 提交记录无更新时间列
func (s *Submission) Touch(time.Time) {}

func (s *Submission) SearchText() []string { return []string{s.StudentName, s.Content, s.StudentName} }

func (s *Submission) FilterCategory() string { return s.Status }

func (s *Submission) Field(column string) any {
	switch column {
	case "assignment_id":
		return s.AssignmentID
	case "student_id":
		return s.StudentID
	case "status":
		return s.Status
	}
	return nil
}

func (s *Submission) ParentID() string { return s.AssignmentID }

func (s *Submission) SetParentID(id string) { s.AssignmentID = id }
