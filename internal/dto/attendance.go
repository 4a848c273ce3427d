package dto

// ── 考勤模块 DTO ──

// RecordAttendanceRequest 记录一次课堂考勤
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required,not_blank"`
	Subject   string `json:"subject"    binding:"required,not_blank,max=100"`
	Present   *bool  `json:"present"    binding:"required"`
	Date      string `json:"date"       binding:"omitempty"` // YYYY-MM-DD，默认今天
}

// AttendanceSubjectResponse 单科出勤
type AttendanceSubjectResponse struct {
	Subject         string  `json:"subject"`
	Teacher         string  `json:"teacher,omitempty"`
	TotalClasses    int     `json:"total_classes"`
	AttendedClasses int     `json:"attended_classes"`
	Percentage      float64 `json:"percentage"`
	Status          string  `json:"status"`
	LastAttended    string  `json:"last_attended,omitempty"`
}

// AttendanceSummaryResponse 学生出勤汇总
type AttendanceSummaryResponse struct {
	StudentID       string                      `json:"student_id"`
	StudentName     string                      `json:"student_name"`
	TotalClasses    int                         `json:"total_classes"`
	AttendedClasses int                         `json:"attended_classes"`
	Overall         float64                     `json:"overall"`
	Status          string                      `json:"status"`
	Subjects        []AttendanceSubjectResponse `json:"subjects"`
}

// AttendanceRosterItem 教师端学生出勤概览
type AttendanceRosterItem struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Overall     float64 `json:"overall"`
	Status      string  `json:"status"`
}
