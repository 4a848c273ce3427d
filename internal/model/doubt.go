package model

import "time"

// Doubt 答疑帖，对应 doubts
type Doubt struct {
	ID         string `gorm:"type:uuid;primaryKey"       json:"id"`
	Title      string `gorm:"type:varchar(200);not null" json:"title"`
	Question   string `gorm:"type:text;not null"         json:"question"`
	Subject    string `gorm:"type:varchar(100);not null" json:"subject"`
	StudentID  string `gorm:"type:varchar(64);not null"  json:"student_id"`
	AuthorName string `gorm:"type:varchar(100);not null" json:"author_name"`
	AuthorRole string `gorm:"type:varchar(20);not null"  json:"author_role"`
	Resolved   bool   `gorm:"not null;default:false"     json:"resolved"`
	Timestamps
}

// TableName 指定表名
func (Doubt) TableName() string { return "doubts" }

func (d *Doubt) RecordID() string { return d.ID }

func (d *Doubt) AssignID(id string, now time.Time) {
	d.ID = id
	d.stamp(now)
}

func (d *Doubt) SearchText() []string { return []string{d.Title, d.Question, d.AuthorName} }

func (d *Doubt) FilterCategory() string { return d.Subject }

func (d *Doubt) Field(column string) any {
	switch column {
	case "subject":
		return d.Subject
	case "student_id":
		return d.StudentID
	case "resolved":
		return d.Resolved
	}
	return nil
}

// DoubtReply 答疑回复，对应 doubt_replies
type DoubtReply struct {
	ID         string    `gorm:"type:uuid;primaryKey"       json:"id"`
	DoubtID    string    `gorm:"type:uuid;not null"         json:"doubt_id"`
	RepliedBy  string    `gorm:"type:varchar(64);not null"  json:"replied_by"`
	AuthorName string    `gorm:"type:varchar(100);not null" json:"author_name"`
	AuthorRole string    `gorm:"type:varchar(20);not null"  json:"author_role"`
	Reply      string    `gorm:"type:text;not null"         json:"reply"`
	CreatedAt  time.Time `gorm:"not null"                   json:"created_at"`
}

// TableName 指定表名
func (DoubtReply) TableName() string { return "doubt_replies" }

func (r *DoubtReply) RecordID() string { return r.ID }

func (r *DoubtReply) AssignID(id string, now time.Time) {
	r.ID = id
	r.CreatedAt = now
}

func (r *DoubtReply) Touch(time.Time) {}

func (r *DoubtReply) SearchText() []string { return []string{r.Reply, "", r.AuthorName} }

func (r *DoubtReply) FilterCategory() string { return r.AuthorRole }

func (r *DoubtReply) Field(column string) any {
	switch column {
	case "doubt_id":
		return r.DoubtID
	case "replied_by":
		return r.RepliedBy
	}
	return nil
}

func (r *DoubtReply) ParentID() string { return r.DoubtID }

func (r *DoubtReply) SetParentID(id string) { r.DoubtID = id }
