package service

import (
	"context"
	"errors"
	"testing"

	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func TestNoteService_CreateAndFilter(t *testing.T) {
	svc := NewNoteService(newTestRepo(), nop)
	ctx := context.Background()

	for _, req := range []dto.CreateNoteRequest{
		{Title: "Trees and Graphs", Subject: "Data Structures", Description: "AVL trees", Tags: "trees, graphs"},
		{Title: "Normalization", Subject: "Database Systems", Description: "3NF and BCNF"},
		{Title: "Scheduling", Subject: "Operating Systems", Description: "Round robin"},
	} {
		req := req
		if _, err := svc.Create(ctx, facultyIdentity(), &req); err != nil {
			t.Fatalf("创建笔记失败: %v", err)
		}
	}

	tests := []struct {
		name     string
		req      dto.ListRequest
		wantLen  int
		wantHead string
	}{
		{"无过滤，最新在前", dto.ListRequest{}, 3, "Scheduling"},
		{"分类 All", dto.ListRequest{Category: "All"}, 3, "Scheduling"},
		{"按科目", dto.ListRequest{Category: "Database Systems"}, 1, "Normalization"},
		{"搜索描述（忽略大小写）", dto.ListRequest{Search: "avl"}, 1, "Trees and Graphs"},
		{"搜索作者", dto.ListRequest{Search: "anjali"}, 3, "Scheduling"},
		{"无匹配", dto.ListRequest{Search: "quantum"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := svc.List(ctx, studentIdentity(), &tt.req)
			if err != nil {
				t.Fatalf("List 失败: %v", err)
			}
			if len(list) != tt.wantLen || total != int64(tt.wantLen) {
				t.Fatalf("期望 %d 条，实际=%d (total=%d)", tt.wantLen, len(list), total)
			}
			if tt.wantLen > 0 && list[0].Title != tt.wantHead {
				t.Errorf("期望首条=%s，实际=%s", tt.wantHead, list[0].Title)
			}
		})
	}
}

func TestNoteService_Create_Validation(t *testing.T) {
	svc := NewNoteService(newTestRepo(), nop)

	_, err := svc.Create(context.Background(), studentIdentity(), &dto.CreateNoteRequest{Title: "x", Subject: " "})
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ValidationError，实际: %v", err)
	}
}

func TestNoteService_Get_IncrementsViews(t *testing.T) {
	svc := NewNoteService(newTestRepo(), nop)
	ctx := context.Background()

	n, _ := svc.Create(ctx, studentIdentity(), &dto.CreateNoteRequest{Title: "Notes", Subject: "Physics", Tags: "a,b"})
	if n.Author != "Priya Sharma" || n.AuthorRole != "student" || len(n.Tags) != 2 {
		t.Errorf("作者或标签错误: %+v", n)
	}

	_, _ = svc.Get(ctx, facultyIdentity(), n.ID)
	got, err := svc.Get(ctx, facultyIdentity(), n.ID)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.Views != 2 {
		t.Errorf("期望浏览次数=2，实际=%d", got.Views)
	}

	if _, err := svc.Get(ctx, facultyIdentity(), "missing"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("期望 ErrNoteNotFound，实际: %v", err)
	}
}
