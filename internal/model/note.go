package model

import "time"

// Note 学习笔记，对应 notes
type Note struct {
	ID          string     `gorm:"type:uuid;primaryKey"        json:"id"`
	Title       string     `gorm:"type:varchar(200);not null"  json:"title"`
	Subject     string     `gorm:"type:varchar(100);not null"  json:"subject"`
	Description string     `gorm:"type:text;not null"          json:"description"`
	Content     string     `gorm:"type:text;not null"          json:"content"`
	FileType    string     `gorm:"type:varchar(20);not null"   json:"file_type"`
	Tags        StringList `gorm:"type:text;not null"          json:"tags"`
	Views       int        `gorm:"not null;default:0"          json:"views"`
	UploadedBy  string     `gorm:"type:varchar(64);not null"   json:"uploaded_by"`
	AuthorName  string     `gorm:"type:varchar(100);not null"  json:"author_name"`
	AuthorRole  string     `gorm:"type:varchar(20);not null"   json:"author_role"`
	Timestamps
}

// TableName 指定表名
func (Note) TableName() string { return "notes" }

func (n *Note) RecordID() string { return n.ID }

func (n *Note) AssignID(id string, now time.Time) {
	n.ID = id
	n.stamp(now)
}

func (n *Note) SearchText() []string { return []string{n.Title, n.Description, n.AuthorName} }

func (n *Note) FilterCategory() string { return n.Subject }

func (n *Note) Field(column string) any {
	switch column {
	case "subject":
		return n.Subject
	case "uploaded_by":
		return n.UploadedBy
	case "file_type":
		return n.FileType
	}
	return nil
}
