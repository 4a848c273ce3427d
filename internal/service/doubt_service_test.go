package service

import (
	"context"
	"errors"
	"testing"

	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
)

func TestDoubtService_ReplyAndResolve(t *testing.T) {
	svc := NewDoubtService(newTestRepo(), nop)
	ctx := context.Background()

	d, err := svc.Create(ctx, studentIdentity(), &dto.CreateDoubtRequest{
		Title: "Integration by parts", Question: "How does it work?", Subject: "Mathematics",
	})
	if err != nil {
		t.Fatalf("创建问题失败: %v", err)
	}

	for _, caller := range []struct {
		name string
		fn   func() error
	}{
		{"教师回复", func() error {
			_, err := svc.Reply(ctx, facultyIdentity(), d.ID, &dto.ReplyDoubtRequest{Reply: "uv - ∫v du"})
			return err
		}},
		{"学生回复", func() error {
			_, err := svc.Reply(ctx, otherStudentIdentity(), d.ID, &dto.ReplyDoubtRequest{Reply: "thanks"})
			return err
		}},
	} {
		if err := caller.fn(); err != nil {
			t.Fatalf("%s 失败: %v", caller.name, err)
		}
	}

	got, err := svc.Get(ctx, studentIdentity(), d.ID)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if len(got.Replies) != 2 || got.Replies[0].AuthorRole != "faculty" || got.ReplyCount != 2 {
		t.Errorf("回复应按追加顺序返回: %+v", got.Replies)
	}

	// 学生不能标记解决
	if _, err := svc.SetResolved(ctx, studentIdentity(), d.ID, true); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("期望 Forbidden，实际: %v", err)
	}
	resolved, err := svc.SetResolved(ctx, facultyIdentity(), d.ID, true)
	if err != nil || !resolved.Resolved {
		t.Fatalf("期望标记解决成功，实际=%+v err=%v", resolved, err)
	}

	open := false
	list, _, _ := svc.List(ctx, facultyIdentity(), &dto.DoubtListRequest{Resolved: &open})
	if len(list) != 0 {
		t.Errorf("已解决的问题不应出现在未解决列表中，实际=%d", len(list))
	}
}

func TestDoubtService_Errors(t *testing.T) {
	svc := NewDoubtService(newTestRepo(), nop)
	ctx := context.Background()

	if _, err := svc.Reply(ctx, facultyIdentity(), "missing", &dto.ReplyDoubtRequest{Reply: "x"}); !errors.Is(err, ErrDoubtNotFound) {
		t.Errorf("期望 ErrDoubtNotFound，实际: %v", err)
	}
	if _, err := svc.SetResolved(ctx, facultyIdentity(), "missing", true); !errors.Is(err, ErrDoubtNotFound) {
		t.Errorf("期望 ErrDoubtNotFound，实际: %v", err)
	}
	if _, err := svc.Create(ctx, studentIdentity(), &dto.CreateDoubtRequest{Title: "t", Question: "  "}); !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ValidationError，实际: %v", err)
	}
}
